package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nfrund/intake/internal/topics"
)

var topicsOutputFormat string

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Explore the topic routing table",
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every accepted topic and its channels",
	Long: `List the topics accepted by POST /input/ together with the channels each
one is forwarded to, in delivery order.

Examples:
  intake topics list
  intake topics list --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := topics.Default()
		if err != nil {
			return err
		}
		return writeTopics(cmd.OutOrStdout(), registry.List(), topicsOutputFormat)
	},
}

// topicDisplay represents a topic for display purposes
type topicDisplay struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Channels    []string `json:"channels"`
}

func writeTopics(w io.Writer, list []topics.Topic, format string) error {
	displays := make([]topicDisplay, len(list))
	for i, t := range list {
		names := make([]string, len(t.Channels))
		for j, k := range t.Channels {
			names[j] = string(k)
		}
		displays[i] = topicDisplay{Name: t.Name, Description: t.Description, Channels: names}
	}

	switch format {
	case "json":
		output := struct {
			Topics []topicDisplay `json:"topics"`
			Count  int            `json:"count"`
		}{Topics: displays, Count: len(displays)}

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tCHANNELS\tDESCRIPTION")
		fmt.Fprintln(tw, "----\t--------\t-----------")
		for _, d := range displays {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, strings.Join(d.Channels, ","), d.Description)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format '%s'. Use 'table' or 'json'", format)
	}
}

func init() {
	rootCmd.AddCommand(topicsCmd)
	topicsCmd.AddCommand(topicsListCmd)
	topicsListCmd.Flags().StringVarP(&topicsOutputFormat, "format", "f", "table", "Output format (table, json)")
}
