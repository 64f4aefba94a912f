package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Ask a running serve instance to organize the browser",
	Long: `Posts an organize trigger to a running tabmesh serve process. The
run itself executes inside serve against the connected browser; this command
only schedules it.`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		if !cmd.Flags().Changed("addr") {
			addr = viper.GetString("server.addr")
		}
		if !strings.Contains(addr, "://") {
			if strings.HasPrefix(addr, ":") {
				addr = "localhost" + addr
			}
			addr = "http://" + addr
		}

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Post(addr+"/v1/trigger", "application/json", nil)
		if err != nil {
			fmt.Printf("Error reaching bridge at %s: %v\n", addr, err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusAccepted {
			fmt.Printf("Bridge refused trigger: %s\n", resp.Status)
			os.Exit(1)
		}
		fmt.Println("Organize run scheduled")
	},
}

func init() {
	rootCmd.AddCommand(organizeCmd)
	organizeCmd.Flags().StringP("addr", "a", ":8765", "Address of the running bridge")
}
