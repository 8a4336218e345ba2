package main

import (
	"fmt"
	"net/url"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newDeviceInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device-info <serial>",
		Short: "Show one device's channel detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"device": {args[0]}}
			env, err := getEnvelope("/api/getdeviceinfo", q)
			if err != nil {
				return err
			}
			body := env.EasyDarwin.Body
			if len(body.Channels) == 0 {
				fmt.Printf("serial=%s snap_url=%s\n", args[0], body.SnapURL)
				return nil
			}
			t := newTable()
			t.AppendHeader(table.Row{"CHANNEL", "NAME", "STATUS", "SNAPURL"})
			for _, c := range body.Channels {
				t.AppendRow(table.Row{c.Channel, c.Name, c.Status, c.SnapURL})
			}
			fmt.Println(t.Render())
			return nil
		},
	}
}
