package image

import "context"

// Request captures one user prompt bound for a generation provider.
type Request struct {
	RequestID string
	Prompt    string
	Style     string
}

// Asset is a generated image ready to be sent back to the chat.
type Asset struct {
	Data []byte
	MIME string
}

// Style is a provider style offered to the user on the style keyboard.
// Title is what the user sees; Name is what the provider expects.
type Style struct {
	Title string
	Name  string
}

// Generator drives one prompt to one decoded image. Implementations hide the
// provider's submit/poll workflow; a call blocks until the image is ready or
// the request fails terminally.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Asset, error)
	Styles(ctx context.Context) ([]Style, error)
	String() string
}

// StyleByTitle resolves a user-facing style title to the provider style name.
// An empty string means the title is not in the catalog.
func StyleByTitle(styles []Style, title string) string {
	for _, s := range styles {
		if s.Title == title {
			return s.Name
		}
	}
	return ""
}
