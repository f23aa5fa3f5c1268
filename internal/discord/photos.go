package discord

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// maxPhotoBytes caps how large an uploaded plant photo may be
const maxPhotoBytes = 6 << 20

// handlePhotoUpload downloads the first image attachment from a message in
// the plant channel and sends it through the analyze endpoint. When the
// estimate stages a dose, the reply tells the user how to confirm it.
func (b *Bot) handlePhotoUpload(s *discordgo.Session, m *discordgo.MessageCreate) {
	var attachment *discordgo.MessageAttachment
	for _, a := range m.Attachments {
		if strings.HasPrefix(a.ContentType, "image/") {
			attachment = a
			break
		}
	}
	if attachment == nil {
		return
	}

	if attachment.Size > maxPhotoBytes {
		s.ChannelMessageSendReply(m.ChannelID, "That photo is too large. Keep it under 6 MB.", m.Reference())
		return
	}

	slog.Info("Plant photo received", "user", m.Author.Username, "filename", attachment.Filename)

	image, err := downloadAttachment(attachment.URL)
	if err != nil {
		slog.Error("Failed to download attachment", "error", err, "url", attachment.URL)
		s.ChannelMessageSendReply(m.ChannelID, MsgAnalysisFailed, m.Reference())
		return
	}

	result, err := b.Client.AnalyzePhoto(m.Author.ID, base64.StdEncoding.EncodeToString(image), attachment.ContentType)
	if err != nil {
		slog.Error("Photo analysis failed", "error", err, "user", m.Author.Username)
		s.ChannelMessageSendReply(m.ChannelID, formatFriendlyError(err.Error()), m.Reference())
		return
	}

	embed := buildEstimateEmbed(result)
	if _, err := s.ChannelMessageSendEmbedReply(m.ChannelID, embed, m.Reference()); err != nil {
		slog.Error("Failed to send analysis reply", "error", err)
	}
}

func downloadAttachment(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment fetch returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}

func buildEstimateEmbed(result *AnalyzeResult) *discordgo.MessageEmbed {
	est := result.Estimate

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Species:** %s\n", est.Species)
	fmt.Fprintf(&sb, "**Size:** %.1f × %.1f cm\n", est.HeightCM, est.WidthCM)

	if len(est.Deficiencies) > 0 {
		var defs []string
		for _, d := range est.Deficiencies {
			if p, ok := est.Probabilities[d]; ok {
				defs = append(defs, fmt.Sprintf("%s (%s)", d, p))
			} else {
				defs = append(defs, d)
			}
		}
		fmt.Fprintf(&sb, "**Deficiencies:** %s\n", strings.Join(defs, ", "))
	} else {
		sb.WriteString("**Deficiencies:** none detected\n")
	}

	if len(est.Diseases) > 0 {
		fmt.Fprintf(&sb, "**Diseases:** %s\n", strings.Join(est.Diseases, ", "))
	}

	if result.Staged {
		sb.WriteString("\nA dose has been staged from this analysis:\n")
		for _, d := range result.Doses {
			fmt.Fprintf(&sb, "• **%s**: %.1f ml\n", d.Nutrient, d.VolumeML)
		}
		sb.WriteString("\nRun `/applyfertilizer` to confirm or `/cancel` to discard.")
	}

	return createEmbed("🔬 Plant Analysis", sb.String(), 0x9b59b6, "")
}
