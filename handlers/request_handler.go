package handlers

import (
	"fmt"
	"time"

	"modbot/bot"
	"modbot/model"
	"modbot/resolution"
	"modbot/utils"
	"modbot/utils/database/requests"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// HandleRequestCommand creates a pending ban or mute request from
// /request-ban or /request-mute. The proposed action only takes effect when a
// second staff member accepts it.
func HandleRequestCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !intakeFromGuild(s, i, b) {
		return
	}

	data := i.ApplicationCommandData()

	action := model.InfractionBan
	if data.Name == "request-mute" {
		action = model.InfractionMute
	}

	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		optionMap[opt.Name] = opt
	}

	targetOpt, ok := optionMap["user"]
	if !ok {
		return
	}
	target := targetOpt.UserValue(s)

	var reason string
	if opt, ok := optionMap["reason"]; ok {
		reason = opt.StringValue()
	}

	var duration time.Duration
	if opt, ok := optionMap["duration"]; ok {
		d, err := parseRequestDuration(opt.StringValue())
		if err != nil {
			if respErr := utils.SendEphemeralResponse(s, i,
				"Invalid duration. Use positive forms like 30m, 12h or 7d."); respErr != nil {
				b.Logger.Warn("failed to respond to request", zap.Error(respErr))
			}
			return
		}
		duration = d
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		b.Logger.Warn("failed to defer request response", zap.Error(err))
		return
	}

	cfg, err := b.Cache.Get(i.GuildID)
	if err != nil {
		b.Logger.Error("failed to load guild config for request", zap.String("guild_id", i.GuildID), zap.Error(err))
		followUpFailure(s, i, b)
		return
	}
	if cfg.AlertChannelID == "" {
		if err := utils.SendFollowUpError(s, i.Interaction,
			"Requests are not set up on this server: no alert channel is configured."); err != nil {
			b.Logger.Warn("failed to respond to request", zap.Error(err))
		}
		return
	}
	if cfg.RequireReasonRequest && reason == "" {
		if err := utils.SendFollowUpError(s, i.Interaction,
			"This server requires a reason for "+data.Name+"."); err != nil {
			b.Logger.Warn("failed to respond to request", zap.Error(err))
		}
		return
	}

	request := model.Request{
		ID:           b.IDGen.Next(),
		GuildID:      i.GuildID,
		RequesterID:  i.Member.User.ID,
		TargetID:     target.ID,
		Action:       action,
		Reason:       reason,
		DurationSecs: int64(duration / time.Second),
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := requests.Add(b.DB, request); err != nil {
		b.Logger.Error("failed to save request", zap.String("guild_id", i.GuildID), zap.Error(err))
		followUpFailure(s, i, b)
		return
	}

	durationText := "permanent"
	if duration > 0 {
		durationText = duration.String()
	}

	alert, err := s.ChannelMessageSendComplex(cfg.AlertChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       fmt.Sprintf("%s request", action),
			Description: fmt.Sprintf("<@%s> proposes to %s <@%s>.", request.RequesterID, action, request.TargetID),
			Color:       0xFEE75C,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Reason", Value: orPlaceholder(reason), Inline: false},
				{Name: "Duration", Value: durationText, Inline: true},
				{Name: "Prior infractions", Value: historySummary(b, i.GuildID, request.TargetID), Inline: true},
			},
			Footer:    &discordgo.MessageEmbedFooter{Text: "Request ID: " + request.ID},
			Timestamp: request.CreatedAt.Format(time.RFC3339),
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: requestButtons(request.ID)},
		},
	})
	if err != nil {
		b.Logger.Error("failed to post request alert",
			zap.String("guild_id", i.GuildID), zap.String("request_id", request.ID), zap.Error(err))
	} else if err := requests.SetAlertMessage(b.DB, request.ID, alert.ID); err != nil {
		b.Logger.Error("failed to record alert message",
			zap.String("request_id", request.ID), zap.Error(err))
	}

	if err := utils.SendFollowUp(s, i.Interaction,
		fmt.Sprintf("Request `%s` submitted for staff sign-off.", request.ID)); err != nil {
		b.Logger.Warn("failed to respond to request", zap.Error(err))
	}
}

// parseRequestDuration parses a proposed action duration. A request is either
// permanent (no duration option) or strictly positive; zero and negative
// durations are rejected rather than silently stored as permanent.
func parseRequestDuration(raw string) (time.Duration, error) {
	d, err := utils.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q is not positive", raw)
	}
	return d, nil
}

func requestButtons(requestID string) []discordgo.MessageComponent {
	accept := resolution.Token{Kind: resolution.EntityRequest, Action: resolution.ActionAccept, EntityID: requestID}
	deny := resolution.Token{Kind: resolution.EntityRequest, Action: resolution.ActionDeny, EntityID: requestID}

	return []discordgo.MessageComponent{
		discordgo.Button{Label: "Accept", Style: discordgo.SuccessButton, CustomID: accept.ComponentID()},
		discordgo.Button{Label: "Deny", Style: discordgo.DangerButton, CustomID: deny.ComponentID()},
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return "(none given)"
	}
	return s
}
