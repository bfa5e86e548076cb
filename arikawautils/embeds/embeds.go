package embeds

import (
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
)

const (
	ColorKek   discord.Color = 0x9bd35a
	ColorGreen discord.Color = 0x00ff00
	ColorRed   discord.Color = 0xde180c
)

// FieldValueLimit is the longest value Discord accepts in an embed field.
const FieldValueLimit = 1024

type Builder struct {
	embed *discord.Embed
}

func NewBuilder() *Builder {
	return &Builder{
		embed: &discord.Embed{
			Type:  discord.NormalEmbed,
			Color: ColorKek,
		},
	}
}

func (eb *Builder) Build() discord.Embed {
	return *eb.embed
}

func (eb *Builder) Title(title string) *Builder {
	eb.embed.Title = title
	return eb
}

func (eb *Builder) Description(desc string) *Builder {
	eb.embed.Description = desc
	return eb
}

func (eb *Builder) URL(url string) *Builder {
	eb.embed.URL = url
	return eb
}

// AddField appends a field, cutting the value down to FieldValueLimit.
// Empty values are replaced with a placeholder since Discord rejects them.
func (eb *Builder) AddField(name, value string, inline ...bool) *Builder {
	i := false
	if len(inline) > 0 {
		i = inline[0]
	}

	eb.embed.Fields = append(eb.embed.Fields, discord.EmbedField{
		Name: name, Value: Truncate(value, FieldValueLimit), Inline: i,
	})

	return eb
}

func (eb *Builder) Color(color discord.Color) *Builder {
	eb.embed.Color = color
	return eb
}

func (eb *Builder) Timestamp(t time.Time) *Builder {
	eb.embed.Timestamp = discord.NewTimestamp(t)
	return eb
}

func (eb *Builder) Footer(text, icon string) *Builder {
	eb.embed.Footer = &discord.EmbedFooter{
		Text: text,
		Icon: icon,
	}

	return eb
}

func (eb *Builder) ErrorTemplate(message string) *Builder {
	eb.Title("🛑 A wild error appears!").Description(message)
	eb.Color(ColorRed)
	return eb
}

// Truncate shortens s to at most limit runes, ending with an ellipsis when cut.
func Truncate(s string, limit int) string {
	if s == "" {
		return "\u200b"
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit-1]) + "…"
}
