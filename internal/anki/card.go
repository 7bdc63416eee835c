package anki

import (
	"codeberg.org/snonux/wortschatz/internal/media"
	"codeberg.org/snonux/wortschatz/internal/vocab"
)

// Card is an accepted record together with its synthesized audio
type Card struct {
	Record vocab.Record
	Assets []media.Asset
	Tags   []string
}
