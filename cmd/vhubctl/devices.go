package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mediahub/vhub/protocol"
)

func newDevicesCmd() *cobra.Command {
	var appType, terminalType string
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List devices currently registered with the hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if appType != "" {
				q.Set("AppType", appType)
			}
			if terminalType != "" {
				q.Set("TerminalType", terminalType)
			}
			env, err := getEnvelope("/api/getdevicelist", q)
			if err != nil {
				return err
			}
			return renderDevices(env.EasyDarwin.Body.Devices)
		},
	}
	cmd.Flags().StringVar(&appType, "apptype", "", "filter by app type (camera/nvr)")
	cmd.Flags().StringVar(&terminalType, "terminaltype", "", "filter by terminal type")
	return cmd
}

func renderDevices(devices []protocol.DeviceSummary) error {
	t := newTable()
	t.AppendHeader(table.Row{"SERIAL", "NAME", "TAG", "APPTYPE", "TERMINALTYPE"})
	for _, d := range devices {
		t.AppendRow(table.Row{d.Serial, d.Name, d.Tag, d.AppType, d.TerminalType})
	}
	fmt.Println(t.Render())
	return nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		t.SetAllowedRowLength(w)
	}
	return t
}
