package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	contractx "github.com/spinlab/coach/agent/contract"
	logx "github.com/spinlab/coach/pkg/logger"
)

func newAskCmd() *cobra.Command {
	var (
		userID     string
		employeeID string
	)

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Run one chat turn for a user id and print the JSON response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(userID) == "" {
				return errors.New("--user is required")
			}
			ctx, _ := logx.WithCorrelationID(cmd.Context(), "")

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.orchestrator.HandleChat(ctx, userID, contractx.ChatRequest{
				Message: strings.Join(args, " "),
				Viewing: contractx.ViewingContext{EmployeeID: employeeID},
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "auth user id to act as")
	cmd.Flags().StringVar(&employeeID, "viewing-employee", "", "employee id the manager is looking at")
	return cmd
}
