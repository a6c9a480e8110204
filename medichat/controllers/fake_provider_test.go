package controllers

import (
	"context"
	"medichat/medichat/services/llm"
	"sync"
)

type providerCall struct {
	credential string
	messages   []llm.Message
	params     llm.Params
}

// fakeProvider replays scripted answers and records every call.
type fakeProvider struct {
	mu      sync.Mutex
	calls   []providerCall
	answers []string
	err     error
	panicOn string
}

func (f *fakeProvider) Complete(ctx context.Context, credential string, messages []llm.Message, params llm.Params) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, providerCall{
		credential: credential,
		messages:   append([]llm.Message(nil), messages...),
		params:     params,
	})
	last := messages[len(messages)-1].Content
	if f.panicOn != "" && last == f.panicOn {
		panic("provider exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	if len(f.answers) > 0 {
		a := f.answers[0]
		f.answers = f.answers[1:]
		return a, nil
	}
	return "answer to " + last, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeProvider) lastCall() providerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}
