package openai

import (
	"os"
	"sync"

	"github.com/sashabaranov/go-openai"
)

var (
	once      sync.Once
	singleton *openai.Client
)

// GetClient returns the shared OpenAI client. OPENAI_API_KEY must be
// set.
func GetClient() *openai.Client {
	once.Do(func() {
		token, ok := os.LookupEnv("OPENAI_API_KEY")
		if !ok {
			panic("OPENAI_API_KEY environment variable not set")
		}
		singleton = openai.NewClient(token)
	})

	return singleton
}
