package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/engine"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/logger"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/report"
)

var (
	question  string
	followUps []string
	outPath   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "召开一次高管会议，可连续追问",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := newEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if err := runRound(ctx, e, question, false); err != nil {
			return err
		}
		for _, q := range followUps {
			if err := runRound(ctx, e, q, true); err != nil {
				return err
			}
		}

		if outPath == "" {
			return nil
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("无法创建报告文件: %w", err)
		}
		defer f.Close()
		if err := report.Render(f, e.Snapshot(), e, time.Now()); err != nil {
			return err
		}
		logger.Log.Infof("HTML 报告已生成: %s", outPath)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&question, "question", "q", "", "会议议题")
	analyzeCmd.Flags().StringArrayVarP(&followUps, "follow-up", "f", nil, "针对上一轮结论的追问，可重复")
	analyzeCmd.Flags().StringVarP(&outPath, "out", "o", "", "输出 HTML 报告路径")
	_ = analyzeCmd.MarkFlagRequired("question")
}

func runRound(ctx context.Context, e *engine.Engine, q string, followUp bool) error {
	err := e.Run(ctx, engine.RunOptions{
		Query:    q,
		FollowUp: followUp,
		Progress: func(step model.Step) { fmt.Println(progressLine(step)) },
	})
	if err != nil {
		fmt.Println(errStyle.Render("分析错误: " + err.Error()))
		return err
	}

	snap := e.Snapshot()
	printMarkdown("CFO 财务分析", snap.Reports.CFO)
	printMarkdown("COO 营运分析", snap.Reports.COO)
	printMarkdown("CEO 战略决策", snap.Reports.CEO)
	fmt.Println(riskLine(snap.RiskScore))
	if snap.HasChart {
		fmt.Println(stepStyle.Render("图表: " + snap.ChartExplanation))
	}
	fmt.Println(titleStyle.Render("建议追问"))
	for i, s := range snap.SuggestedQuestions {
		fmt.Printf("  %d. %s\n", i+1, s)
	}
	return nil
}
