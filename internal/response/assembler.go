// Package response turns a classified query plus matching phones into
// the final assistant reply. Each intent tries one language model
// generation and falls back to a deterministic answer when the model
// fails, so the assistant always responds.
package response

import (
	"context"
	"log"
	"strings"

	"github.com/phonewise/phonewise-be/internal/classifier"
	"github.com/phonewise/phonewise-be/internal/db"
	"github.com/phonewise/phonewise-be/internal/fallback"
	"github.com/phonewise/phonewise-be/internal/prompt"
	"github.com/phonewise/phonewise-be/pkg/llm"
)

// Response is a fully assembled assistant reply
type Response struct {
	Response    string            `json:"response"`
	Products    []db.Phone        `json:"products"`
	Intent      classifier.Intent `json:"intent"`
	Suggestions []string          `json:"suggestions"`
}

// Assembler builds responses from classification results and phones
type Assembler struct {
	client  llm.Client
	builder *prompt.Builder
}

// NewAssembler creates a response assembler
func NewAssembler(client llm.Client) *Assembler {
	return &Assembler{
		client:  client,
		builder: prompt.NewBuilder(),
	}
}

// Assemble dispatches on intent and returns the reply. Adversarial
// queries get the fixed refusal without touching the model.
func (a *Assembler) Assemble(ctx context.Context, query string, res classifier.Result, phones []db.Phone) Response {
	switch res.Intent {
	case classifier.IntentAdversarial:
		return Refusal()
	case classifier.IntentChitchat:
		return a.chitchat(ctx, query)
	case classifier.IntentExplain:
		return a.featureExplanation(ctx, query)
	case classifier.IntentCompare:
		return a.comparison(ctx, phones)
	case classifier.IntentDetails:
		if len(phones) > 0 {
			return a.details(ctx, query, phones[0])
		}
	}
	return a.search(ctx, query, res, phones)
}

// Refusal is the fixed reply for adversarial queries
func Refusal() Response {
	return Response{
		Response:    fallback.Refusal,
		Products:    []db.Phone{},
		Intent:      classifier.IntentAdversarial,
		Suggestions: fallback.RefusalSuggestions,
	}
}

func (a *Assembler) chitchat(ctx context.Context, query string) Response {
	r := Response{
		Products:    []db.Phone{},
		Intent:      classifier.IntentChitchat,
		Suggestions: fallback.Suggestions(classifier.IntentChitchat, classifier.Params{}),
	}

	r.Response = a.generate(ctx, a.builder.Chitchat(query), func() string {
		return fallback.Chitchat(query)
	})
	return r
}

func (a *Assembler) featureExplanation(ctx context.Context, query string) Response {
	r := Response{
		Products:    []db.Phone{},
		Intent:      classifier.IntentExplain,
		Suggestions: fallback.Suggestions(classifier.IntentExplain, classifier.Params{}),
	}

	r.Response = a.generate(ctx, a.builder.FeatureExplanation(query), func() string {
		return fallback.ExplainFeature(query)
	})
	return r
}

func (a *Assembler) comparison(ctx context.Context, phones []db.Phone) Response {
	if len(phones) < 2 {
		return Response{
			Response:    fallback.NeedTwoPhones,
			Products:    []db.Phone{},
			Intent:      classifier.IntentCompare,
			Suggestions: []string{"Compare Samsung S24 vs OnePlus 12"},
		}
	}

	r := Response{
		Products:    phones,
		Intent:      classifier.IntentCompare,
		Suggestions: fallback.Suggestions(classifier.IntentCompare, classifier.Params{}),
	}

	r.Response = a.generate(ctx, a.builder.Comparison(phones), func() string {
		return fallback.Comparison(phones)
	})
	return r
}

func (a *Assembler) details(ctx context.Context, query string, phone db.Phone) Response {
	r := Response{
		Products:    []db.Phone{phone},
		Intent:      classifier.IntentDetails,
		Suggestions: fallback.DetailsSuggestions(phone),
	}

	r.Response = a.generate(ctx, a.builder.Details(query, phone), func() string {
		return fallback.Details(phone)
	})
	return r
}

func (a *Assembler) search(ctx context.Context, query string, res classifier.Result, phones []db.Phone) Response {
	if len(phones) == 0 {
		return Response{
			Response:    fallback.NoPhonesFound,
			Products:    []db.Phone{},
			Intent:      res.Intent,
			Suggestions: fallback.NoResultsSuggestions,
		}
	}

	r := Response{
		Products:    phones,
		Intent:      res.Intent,
		Suggestions: fallback.Suggestions(res.Intent, res.Params),
	}

	r.Response = a.generate(ctx, a.builder.SearchResults(query, res.Params, phones), func() string {
		return fallback.SearchResults(phones)
	})
	return r
}

// generate makes a single model attempt and falls back on any failure
func (a *Assembler) generate(ctx context.Context, p prompt.Prompt, fallbackFn func() string) string {
	text, err := a.client.Generate(ctx, p.Text, p.MaxTokens, p.Temperature)
	if err != nil {
		log.Printf("Generation failed, using fallback: %v", err)
		return fallbackFn()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		log.Printf("Generation returned empty text, using fallback")
		return fallbackFn()
	}
	return text
}
