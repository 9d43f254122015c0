package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tradepilot/internal/model"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleScheduler(ctx context.Context, c telebot.Context) error {
	jobs, err := t.service.SchedulerService.GetJobSchedule(ctx, model.GetJobParam{
		IsActive: utils.ToPointer(true),
	})
	if err != nil {
		t.log.ErrorContext(ctx, "failed to get jobs", logger.ErrorField(err))
		_, err = t.telegram.Send(ctx, c, commonErrorInternal)
		return err
	}

	if len(jobs) == 0 {
		_, err = t.telegram.Send(ctx, c, "There are no active jobs.")
		return err
	}

	msg := strings.Builder{}
	msg.WriteString("📋 Active jobs:\n\n")
	msg.WriteString("<i>👉 Tap a job to see its recent runs or run it now</i>\n")

	menu := &telebot.ReplyMarkup{}
	rows := []telebot.Row{}
	for _, job := range jobs {
		rows = append(rows, menu.Row(menu.Data(job.Name, btnDetailJob.Unique, strconv.FormatUint(uint64(job.ID), 10))))
	}
	rows = append(rows, menu.Row(menu.Data(btnDeleteMessage.Text, btnDeleteMessage.Unique)))
	menu.Inline(rows...)

	msgExist := c.Message()
	if c.Callback() != nil && msgExist != nil {
		_, err = t.telegram.Edit(ctx, c, msgExist, msg.String(), menu, telebot.ModeHTML)
		return err
	}

	_, err = t.telegram.Send(ctx, c, msg.String(), menu, telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) handleBtnDetailJob(ctx context.Context, c telebot.Context) error {
	jobID, err := strconv.ParseUint(c.Data(), 10, 64)
	if err != nil {
		t.log.ErrorContext(ctx, "failed to parse job id", logger.ErrorField(err))
		_, err = t.telegram.Send(ctx, c, commonErrorInternal)
		return err
	}

	jobs, err := t.service.SchedulerService.GetJobSchedule(ctx, model.GetJobParam{
		IDs: []uint{uint(jobID)},
		WithTaskHistory: &model.GetTaskExecutionHistoryParam{
			Limit: utils.ToPointer(5),
		},
	})
	if err != nil {
		t.log.ErrorContext(ctx, "failed to get job by id", logger.ErrorField(err))
		_, err = t.telegram.Send(ctx, c, commonErrorInternal)
		return err
	}

	if len(jobs) == 0 {
		_, err = t.telegram.Send(ctx, c, "Job not found.")
		return err
	}

	menu := &telebot.ReplyMarkup{}
	btnRun := menu.Data(btnActionRunJob.Text, btnActionRunJob.Unique, strconv.FormatUint(jobID, 10))
	btnBack := menu.Data(btnActionBackToJobList.Text, btnActionBackToJobList.Unique)
	menu.Inline(menu.Row(btnRun, btnBack))

	_, err = t.telegram.Edit(ctx, c, c.Message(), formatJobDetail(&jobs[0]), menu, telebot.ModeHTML)
	return err
}

func formatJobDetail(job *model.Job) string {
	msg := strings.Builder{}
	msg.WriteString(fmt.Sprintf("<b>%s</b>\n\n", job.Name))
	if job.Description != "" {
		msg.WriteString(fmt.Sprintf("🔍 %s\n\n", job.Description))
	}

	msg.WriteString("📅 Schedule:\n")
	if len(job.Schedules) > 0 {
		schedule := job.Schedules[0]
		if schedule.LastExecution.Valid {
			msg.WriteString(fmt.Sprintf(" • Last run : %s\n", utils.PrettyDate(schedule.LastExecution.Time)))
		} else {
			msg.WriteString(" • Last run : never\n")
		}
		if schedule.NextExecution.Valid {
			msg.WriteString(fmt.Sprintf(" • Next run : %s\n", utils.PrettyDate(schedule.NextExecution.Time)))
		} else {
			msg.WriteString(" • Next run : not scheduled\n")
		}
	} else {
		msg.WriteString(" • not scheduled\n")
	}

	msg.WriteString("\n📜 Recent runs (UTC):\n")
	for idx, history := range job.Histories {
		if history.CreatedAt.IsZero() {
			continue
		}
		icon := "🟢"
		switch history.Status {
		case model.StatusRunning:
			icon = "🟡"
		case model.StatusFailed:
			icon = "🔴"
		case model.StatusTimeout:
			icon = "🟠"
		}

		if !history.CompletedAt.Valid {
			msg.WriteString(fmt.Sprintf("%d. %s %s - %s\n", idx+1, icon, history.CreatedAt.UTC().Format("01/02 15:04"), strings.ToUpper(string(history.Status))))
			continue
		}
		duration := history.CompletedAt.Time.Sub(history.StartedAt)
		msg.WriteString(fmt.Sprintf("%d. %s %s - %d | %s (%.1fs)\n", idx+1, icon, history.CreatedAt.UTC().Format("01/02 15:04"), history.ExitCode.Int32, strings.ToUpper(string(history.Status)), duration.Seconds()))
	}
	return msg.String()
}

func (t *TelegramBotHandler) handleBtnActionRunJob(ctx context.Context, c telebot.Context) error {
	jobID, err := strconv.ParseUint(c.Data(), 10, 64)
	if err != nil {
		t.log.ErrorContext(ctx, "failed to parse job id", logger.ErrorField(err))
		_, err = t.telegram.Send(ctx, c, commonErrorInternal)
		return err
	}

	if err := t.service.SchedulerService.RunJobTask(ctx, uint(jobID)); err != nil {
		t.log.ErrorContext(ctx, "failed to run job task", logger.ErrorField(err))
		_, err = t.telegram.Send(ctx, c, commonErrorInternal)
		return err
	}
	if err := t.telegram.Respond(ctx, c, &telebot.CallbackResponse{Text: "Job started"}); err != nil {
		t.log.WarnContext(ctx, "failed to answer callback", logger.ErrorField(err))
	}
	return t.handleScheduler(ctx, c)
}

func (t *TelegramBotHandler) handleBtnActionBackToJobList(ctx context.Context, c telebot.Context) error {
	return t.handleScheduler(ctx, c)
}
