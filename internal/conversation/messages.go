package conversation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"alyabot/internal/domain"
)

// MaxMessageLength keeps replies under Telegram's 4096 character limit
const MaxMessageLength = 4000

const (
	textWelcome          = "👋 Welcome to Alya English Learning Bot!\nChoose an option below to start learning:"
	textPromptWord       = "🔤 Please send the English word you want to add:"
	textInvalidWord      = "❌ Please enter a valid English word (letters only)."
	textWordNotFound     = "❌ Couldn't find data for this word. Try another one!"
	textNoWords          = "❗ No words saved yet."
	textNeedMoreWords    = "❗ Need at least 4 words for a quiz."
	textNeedMoreSynonyms = "❗ Not enough words with synonyms for quiz."
	textInvalidChoice    = "❓ Please choose a valid option."
	textCorrect          = "✅ Correct!"
	textEnded            = "👋 Conversation ended. Type /start to begin again."
	textStartHint        = "👋 Type /start to begin."
	textFailure          = "⚠️ An error occurred. Let's go back to the main menu."
	textListHeader       = "📜 Your saved words:\n\n"
	entrySeparator       = "\n\n"
)

var (
	optAddWord   = Option{Label: "📘 Add Word", Kind: domain.EventSelection, Payload: domain.SelectAddWord}
	optQuiz      = Option{Label: "📝 Quiz", Kind: domain.EventSelection, Payload: domain.SelectQuiz}
	optListWords = Option{Label: "📜 List Words", Kind: domain.EventSelection, Payload: domain.SelectListWords}
	optWordOfDay = Option{Label: "🌟 Word of the Day", Kind: domain.EventSelection, Payload: domain.SelectWordOfDay}
	optBack      = Option{Label: "🔁 Back to Menu", Kind: domain.EventSelection, Payload: domain.SelectMenu}
	optCancel    = Option{Label: "❌ Cancel", Kind: domain.EventSelection, Payload: domain.SelectCancel}
)

func menuReply() Reply {
	return Reply{
		Text:    textWelcome,
		Options: []Option{optAddWord, optQuiz, optListWords, optWordOfDay},
		Layout:  LayoutColumn,
	}
}

func withBack(text string) Reply {
	return Reply{Text: text, Options: []Option{optBack}, Layout: LayoutRow}
}

func plain(text string) Reply {
	return Reply{Text: text}
}

func failureReply() Reply {
	return withBack(textFailure)
}

func savedReply(e domain.WordEntry) Reply {
	text := fmt.Sprintf("✅ Word '%s' saved!\n\n%s", e.Word, entryDetails(e))
	return Reply{Text: text, Options: []Option{optBack, optCancel}, Layout: LayoutRow}
}

func wordOfDayReply(e domain.WordEntry) Reply {
	return withBack(fmt.Sprintf("🌟 Word of the Day: %s\n\n%s", e.Word, entryDetails(e)))
}

func entryDetails(e domain.WordEntry) string {
	return fmt.Sprintf("📝 Arabic meaning: %s\n🟰 Synonyms: %s\n📖 Example: %s",
		e.Meaning, e.SynonymsText(), e.Example)
}

func entryBlock(e domain.WordEntry) string {
	return fmt.Sprintf("🔤 %s\n📝 Arabic: %s\n🟰 Synonyms: %s\n📖 Example: %s",
		e.Word, e.Meaning, e.SynonymsText(), e.Example)
}

// listReplies renders all entries, splitting into several messages of at
// most MaxMessageLength bytes. Blocks are kept whole when they fit in an
// empty message; longer ones are cut on rune boundaries. Only the last
// message carries the back button.
func listReplies(entries []domain.WordEntry) []Reply {
	var texts []string
	var sb strings.Builder
	sb.WriteString(textListHeader)
	hasEntries := false

	flush := func() {
		texts = append(texts, sb.String())
		sb.Reset()
		hasEntries = false
	}

	for _, e := range entries {
		block := entryBlock(e)
		if hasEntries {
			if sb.Len()+len(entrySeparator)+len(block) > MaxMessageLength {
				flush()
			} else {
				sb.WriteString(entrySeparator)
			}
		}

		// sb is empty or holds only the header here, so every cut is non-empty
		for sb.Len()+len(block) > MaxMessageLength {
			cut := runeCut(block, MaxMessageLength-sb.Len())
			sb.WriteString(block[:cut])
			block = block[cut:]
			flush()
		}
		sb.WriteString(block)
		hasEntries = true
	}
	texts = append(texts, sb.String())

	replies := make([]Reply, 0, len(texts))
	for _, text := range texts[:len(texts)-1] {
		replies = append(replies, plain(text))
	}
	return append(replies, withBack(texts[len(texts)-1]))
}

// runeCut returns the largest index <= limit that does not split a rune in s
func runeCut(s string, limit int) int {
	if limit >= len(s) {
		return len(s)
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return limit
}

func questionReply(q domain.QuestionView) Reply {
	options := make([]Option, 0, len(q.Options))
	for _, word := range q.Options {
		options = append(options, Option{Label: word, Kind: domain.EventAnswer, Payload: word})
	}
	return Reply{
		Text:    fmt.Sprintf("❓ Question %d/%d:\nWhich word matches this synonym: %s", q.Number, q.Total, q.Synonym),
		Options: options,
		Layout:  LayoutRow,
	}
}

func answerReply(r domain.AnswerResult) Reply {
	if r.Correct {
		return plain(textCorrect)
	}
	return plain(fmt.Sprintf("❌ Wrong. The correct word was: %s", r.CorrectWord))
}

func finalScoreReply(r domain.AnswerResult) Reply {
	return withBack(fmt.Sprintf("🎉 Quiz finished! Your score: %d/%d", r.Score, r.Total))
}
