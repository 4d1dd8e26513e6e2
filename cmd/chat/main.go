package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"fin-query-be/internal/bootstrap"
	"fin-query-be/internal/config"
	"fin-query-be/internal/dto"
	"fin-query-be/pkg/database"
	"fin-query-be/pkg/store"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Interactive funnel client. Drives the resolution funnel in-process:
// type a question, answer the follow-ups, get the resolved query.
func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	ctx := context.Background()

	userId := uuid.New()
	if v := os.Getenv("CHAT_USER_ID"); v != "" {
		if parsed, err := uuid.Parse(v); err == nil {
			userId = parsed
		}
	}

	header := color.New(color.FgCyan, color.Bold)
	ask := color.New(color.FgYellow)
	ok := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)

	header.Println("=== A股查询漏斗 ===")
	fmt.Println("输入您的问题，输入 exit 退出。")

	session, err := container.FunnelService.CreateSession(ctx, userId, &dto.CreateFunnelSessionRequest{})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			fmt.Print("> ")
			continue
		}
		if text == "exit" || text == "quit" {
			_ = container.FunnelService.CancelSession(ctx, userId, session.Id)
			break
		}

		res, err := container.FunnelService.Advance(ctx, userId, session.Id, &dto.AdvanceRequest{Message: text})
		if err != nil {
			fail.Printf("错误: %v\n", err)
			fmt.Print("> ")
			continue
		}

		switch res.Status {
		case store.StatusAwaitingUser:
			ask.Println(res.ChaseQuestion)
			for i, opt := range res.ChaseOptions {
				ask.Printf("  %d. %s\n", i+1, opt)
			}
			fmt.Print("> ")

		case store.StatusAnswerable:
			ok.Println("✅ 查询已就绪")
			fmt.Printf("解析后的查询: %s\n", res.ResolvedQuery)
			if res.Caveats != "" {
				ask.Printf("注意: %s\n", res.Caveats)
			}
			if len(res.Evidence) > 0 {
				fmt.Printf("依据 %d 条证据 (%d 次检索)\n", len(res.Evidence), res.AttemptCount)
			}
			return

		case store.StatusFailed:
			fail.Printf("❌ 无法完成: %s\n", res.FailureReason)
			return

		default:
			fmt.Printf("状态: %s\n", res.Status)
			fmt.Print("> ")
		}
	}
}
