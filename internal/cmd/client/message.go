package client

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewMessageCommand constructs the `message` command group and subcommands.
func NewMessageCommand(baseURL BaseURLFunc) *cobra.Command {
	msgCmd := &cobra.Command{Use: "message", Short: "Message operations"}
	msgCmd.AddCommand(
		newMessageAppendCommand(baseURL),
		newMessageQueryCommand(baseURL),
		newMessageGetCommand(baseURL),
		newMessageLastCommand(baseURL),
	)
	return msgCmd
}

// newMessageAppendCommand constructs the `message append` subcommand.
func newMessageAppendCommand(baseURL BaseURLFunc) *cobra.Command {
	appendCmd := &cobra.Command{
		Use:   "append",
		Short: "Append a message to a subject",
		RunE: func(cmd *cobra.Command, _ []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			data, _ := cmd.Flags().GetString("data")
			file, _ := cmd.Flags().GetString("file")

			var payload []byte
			switch {
			case data != "" && file != "":
				return errors.New("use only one of --data or --file")
			case file == "-":
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				payload = b
			case file != "":
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				payload = b
			default:
				payload = []byte(data)
			}
			seq, err := getTransport(baseURL).Append(cmd.Context(), subject, payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sequence: %d\n", seq)
			return nil
		},
	}
	appendCmd.Flags().StringP("subject", "s", "", "Subject")
	appendCmd.Flags().String("data", "", "Payload text")
	appendCmd.Flags().String("file", "", "Read payload from file (- for stdin)")
	_ = appendCmd.MarkFlagRequired("subject")
	return appendCmd
}

// newMessageQueryCommand constructs the `message query` subcommand. Output is
// the raw frame stream: 8-byte big-endian sequence then payload, per found key.
func newMessageQueryCommand(baseURL BaseURLFunc) *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Bulk fetch messages as a raw frame stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			seqs, _ := cmd.Flags().GetUintSlice("seq")
			out, _ := cmd.Flags().GetString("out")
			asHex, _ := cmd.Flags().GetBool("hex")
			if len(seqs) == 0 {
				return errors.New("at least one --seq is required")
			}
			keys := make([]uint64, len(seqs))
			for i, s := range seqs {
				keys[i] = uint64(s)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			var dumper io.WriteCloser
			if asHex {
				dumper = hex.Dumper(w)
				w = dumper
			}
			n, err := getTransport(baseURL).Query(cmd.Context(), subject, keys, w)
			if dumper != nil {
				_ = dumper.Close()
			}
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", n, out)
			}
			return nil
		},
	}
	queryCmd.Flags().StringP("subject", "s", "", "Subject")
	queryCmd.Flags().UintSlice("seq", nil, "Sequence to fetch (repeatable, order preserved)")
	queryCmd.Flags().String("out", "", "Write the frame stream to a file")
	queryCmd.Flags().Bool("hex", false, "Hex-dump the frame stream")
	_ = queryCmd.MarkFlagRequired("subject")
	return queryCmd
}

// newMessageGetCommand constructs the `message get` subcommand.
func newMessageGetCommand(baseURL BaseURLFunc) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch one message and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			seq, _ := cmd.Flags().GetUint64("seq")
			var buf bytes.Buffer
			if _, err := getTransport(baseURL).Query(cmd.Context(), subject, []uint64{seq}, &buf); err != nil {
				return err
			}
			got, payload, ok := splitSingleFrame(buf.Bytes())
			if !ok {
				return fmt.Errorf("message %s/%d not found", subject, seq)
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(decodedMessage(got, payload))
		},
	}
	getCmd.Flags().StringP("subject", "s", "", "Subject")
	getCmd.Flags().Uint64("seq", 0, "Sequence")
	_ = getCmd.MarkFlagRequired("subject")
	_ = getCmd.MarkFlagRequired("seq")
	return getCmd
}

// newMessageLastCommand constructs the `message last` subcommand.
func newMessageLastCommand(baseURL BaseURLFunc) *cobra.Command {
	lastCmd := &cobra.Command{
		Use:   "last",
		Short: "Print the last sequence of a subject",
		RunE: func(cmd *cobra.Command, _ []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			seq, err := getTransport(baseURL).Last(cmd.Context(), subject)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", seq)
			return nil
		},
	}
	lastCmd.Flags().StringP("subject", "s", "", "Subject")
	_ = lastCmd.MarkFlagRequired("subject")
	return lastCmd
}

// NewStatsCommand constructs the `stats` command.
func NewStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show query executor, traffic and storage stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := getTransport(baseURL).Stats(cmd.Context())
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, raw, "", "  "); err != nil {
				return err
			}
			_, err = out.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}
