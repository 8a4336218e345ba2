package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newGetStreamCmd() *cobra.Command {
	var protocolName string
	cmd := &cobra.Command{
		Use:   "get-stream <serial> <channel>",
		Short: "Broker a playback URL for a device channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{
				"device":   {args[0]},
				"channel":  {args[1]},
				"protocol": {protocolName},
			}
			env, err := getEnvelope("/api/getdevicestream", q)
			if err != nil {
				return err
			}
			fmt.Println(env.EasyDarwin.Body.URL)
			return nil
		},
	}
	cmd.Flags().StringVar(&protocolName, "protocol", "rtsp", "stream protocol")
	return cmd
}
