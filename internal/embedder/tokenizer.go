package embedder

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/localsearch/filesearch/internal/core/domain"
)

// textMaxTokens is the text encoder's pad/truncate budget.
const textMaxTokens = 256

// tokenizer wraps a tiktoken-go BPE encoding, used in place of a bundled
// WordPiece/BPE vocabulary. Loaded lazily and cached process-wide as a
// singleton shared by every encoder instance.
type tokenizer struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

var sharedTokenizer tokenizer

func (t *tokenizer) get() (*tiktoken.Tiktoken, error) {
	t.once.Do(func() {
		t.enc, t.err = tiktoken.GetEncoding("cl100k_base")
	})
	if t.err != nil {
		return nil, fmt.Errorf("load tokenizer: %w: %v", domain.ErrModelLoad, t.err)
	}
	return t.enc, nil
}

// truncateToTokenBudget tokenizes text and, if it exceeds maxTokens,
// returns the text decoded back from the first maxTokens token ids. Text
// within budget is returned unchanged. This is the "pad/truncate to N
// tokens" step of the pipeline: the HTTP backends this repo talks to
// accept raw text, so truncation happens on the text side rather than on
// an explicit token-id array the core never gets to hand off.
func truncateToTokenBudget(text string, maxTokens int) (string, int, error) {
	enc, err := sharedTokenizer.get()
	if err != nil {
		return "", 0, err
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text, len(ids), nil
	}
	truncated := enc.Decode(ids[:maxTokens])
	return truncated, maxTokens, nil
}
