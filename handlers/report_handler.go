package handlers

import (
	"fmt"
	"time"

	"modbot/bot"
	"modbot/model"
	"modbot/resolution"
	"modbot/utils"
	"modbot/utils/database/infractions"
	"modbot/utils/database/reports"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// HandleMessageReport creates a pending message report from the "Report
// Message" context-menu command and posts the staff alert.
func HandleMessageReport(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !intakeFromGuild(s, i, b) {
		return
	}

	data := i.ApplicationCommandData()
	message, ok := data.Resolved.Messages[data.TargetID]
	if !ok {
		if err := utils.SendEphemeralResponse(s, i, "Could not resolve the reported message."); err != nil {
			b.Logger.Warn("failed to respond to message report", zap.Error(err))
		}
		return
	}

	report := model.Report{
		ID:         b.IDGen.Next(),
		GuildID:    i.GuildID,
		Kind:       model.ReportKindMessage,
		ReporterID: i.Member.User.ID,
		TargetID:   message.Author.ID,
		MessageID:  message.ID,
		ChannelID:  message.ChannelID,
		Status:     model.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	createReport(s, i, b, report, messageReportSummary(message))
}

// HandleUserReport creates a pending user report from the "Report User"
// context-menu command.
func HandleUserReport(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !intakeFromGuild(s, i, b) {
		return
	}

	data := i.ApplicationCommandData()
	target, ok := data.Resolved.Users[data.TargetID]
	if !ok {
		if err := utils.SendEphemeralResponse(s, i, "Could not resolve the reported user."); err != nil {
			b.Logger.Warn("failed to respond to user report", zap.Error(err))
		}
		return
	}

	report := model.Report{
		ID:         b.IDGen.Next(),
		GuildID:    i.GuildID,
		Kind:       model.ReportKindUser,
		ReporterID: i.Member.User.ID,
		TargetID:   target.ID,
		Status:     model.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	createReport(s, i, b, report, fmt.Sprintf("User <@%s> was reported.", target.ID))
}

// createReport persists the report and posts the staff alert. The interaction
// is deferred up front: the path below makes several store and platform calls
// and must not run into the initial-response deadline.
func createReport(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, report model.Report, summary string) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Logger.Warn("failed to defer report response", zap.Error(err))
		return
	}

	cfg, err := b.Cache.Get(i.GuildID)
	if err != nil {
		b.Logger.Error("failed to load guild config for report", zap.String("guild_id", i.GuildID), zap.Error(err))
		followUpFailure(s, i, b)
		return
	}
	if cfg.AlertChannelID == "" {
		if err := utils.SendFollowUpError(s, i.Interaction,
			"Reports are not set up on this server: no alert channel is configured."); err != nil {
			b.Logger.Warn("failed to respond to report", zap.Error(err))
		}
		return
	}

	if err := reports.Add(b.DB, report); err != nil {
		b.Logger.Error("failed to save report", zap.String("guild_id", i.GuildID), zap.Error(err))
		followUpFailure(s, i, b)
		return
	}

	alert, err := s.ChannelMessageSendComplex(cfg.AlertChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       fmt.Sprintf("%s report", report.Kind),
			Description: summary,
			Color:       0xED4245,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Target", Value: fmt.Sprintf("<@%s>", report.TargetID), Inline: true},
				{Name: "Reporter", Value: fmt.Sprintf("<@%s>", report.ReporterID), Inline: true},
				{Name: "Prior infractions", Value: historySummary(b, i.GuildID, report.TargetID), Inline: true},
			},
			Footer:    &discordgo.MessageEmbedFooter{Text: "Report ID: " + report.ID},
			Timestamp: report.CreatedAt.Format(time.RFC3339),
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: reportButtons(report.ID)},
		},
	})
	if err != nil {
		b.Logger.Error("failed to post report alert",
			zap.String("guild_id", i.GuildID), zap.String("report_id", report.ID), zap.Error(err))
	} else if err := reports.SetAlertMessage(b.DB, report.ID, alert.ID); err != nil {
		b.Logger.Error("failed to record alert message",
			zap.String("report_id", report.ID), zap.Error(err))
	}

	if err := utils.SendFollowUp(s, i.Interaction, "Thanks, your report has been sent to the staff team."); err != nil {
		b.Logger.Warn("failed to respond to report", zap.Error(err))
	}
}

func reportButtons(reportID string) []discordgo.MessageComponent {
	accept := resolution.Token{Kind: resolution.EntityReport, Action: resolution.ActionAccept, EntityID: reportID}
	deny := resolution.Token{Kind: resolution.EntityReport, Action: resolution.ActionDeny, EntityID: reportID}
	disregard := resolution.Token{Kind: resolution.EntityReport, Action: resolution.ActionDisregard, EntityID: reportID}

	return []discordgo.MessageComponent{
		discordgo.Button{Label: "Accept", Style: discordgo.SuccessButton, CustomID: accept.ComponentID()},
		discordgo.Button{Label: "Deny", Style: discordgo.DangerButton, CustomID: deny.ComponentID()},
		discordgo.Button{Label: "Disregard", Style: discordgo.SecondaryButton, CustomID: disregard.ComponentID()},
	}
}

func messageReportSummary(message *discordgo.Message) string {
	content := message.Content
	if len(content) > 200 {
		content = content[:200] + "…"
	}
	if content == "" {
		content = "(no text content)"
	}
	return fmt.Sprintf("Message from <@%s> in <#%s> was reported:\n> %s",
		message.Author.ID, message.ChannelID, content)
}

// historySummary condenses the target's infraction record into one embed
// field so reviewing staff see repeat offenders at a glance.
func historySummary(b *bot.Bot, guildID, targetID string) string {
	history, err := infractions.GetByUser(b.DB, guildID, targetID)
	if err != nil {
		b.Logger.Warn("failed to load infraction history",
			zap.String("guild_id", guildID), zap.String("user_id", targetID), zap.Error(err))
		return "unavailable"
	}
	if len(history) == 0 {
		return "none"
	}
	return fmt.Sprintf("%d (last: %s, <t:%d:R>)", len(history), history[0].Kind, history[0].CreatedAt.Unix())
}

// intakeFromGuild rejects interactions that did not arrive from a guild
// member. Commands are registered guild-only, but a stale registration can
// still deliver one from a DM with no member attached.
func intakeFromGuild(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	if i.GuildID != "" && i.Member != nil {
		return true
	}
	if err := utils.SendEphemeralResponse(s, i, "This command only works inside a server."); err != nil {
		b.Logger.Warn("failed to respond to non-guild interaction", zap.Error(err))
	}
	return false
}

func respondGenericFailure(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.SendEphemeralResponse(s, i, "Something went wrong. Try again shortly."); err != nil {
		b.Logger.Warn("failed to send failure response", zap.Error(err))
	}
}

func followUpFailure(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.SendFollowUpError(s, i.Interaction, "Something went wrong. Try again shortly."); err != nil {
		b.Logger.Warn("failed to send failure follow-up", zap.Error(err))
	}
}
