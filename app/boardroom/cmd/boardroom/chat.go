package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/gateway"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "与数据助手对话，空行或 /exit 结束",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := newEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		printMarkdown("AI", session.Greeting)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" || line == "/exit" {
				break
			}
			reply, err := e.Chat(cmd.Context(), line)
			title := "AI"
			if reply.Model != "" {
				title = "AI (" + reply.Model + ")"
			}
			printMarkdown(title, reply.Content)
			if errors.Is(err, gateway.ErrMissingAPIKey) {
				return err
			}
		}
		return scanner.Err()
	},
}
