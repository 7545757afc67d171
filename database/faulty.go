package database

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected é o erro devolvido pelas operações marcadas para falhar em Faulty.
var ErrInjected = errors.New("injected storage failure")

// Faulty envolve um KV e falha as operações escolhidas. Usado nos testes dos stores.
type Faulty struct {
	KV

	mu         sync.Mutex
	failGet    bool
	failSet    bool
	failRemove bool
	sets       int
}

func NewFaulty(inner KV) *Faulty {
	return &Faulty{KV: inner}
}

func (f *Faulty) FailGet(v bool)    { f.mu.Lock(); f.failGet = v; f.mu.Unlock() }
func (f *Faulty) FailSet(v bool)    { f.mu.Lock(); f.failSet = v; f.mu.Unlock() }
func (f *Faulty) FailRemove(v bool) { f.mu.Lock(); f.failRemove = v; f.mu.Unlock() }

// Sets conta as escritas bem-sucedidas.
func (f *Faulty) Sets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

func (f *Faulty) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return "", false, ErrInjected
	}
	return f.KV.Get(ctx, key)
}

func (f *Faulty) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := f.failSet
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	if err := f.KV.Set(ctx, key, value); err != nil {
		return err
	}
	f.mu.Lock()
	f.sets++
	f.mu.Unlock()
	return nil
}

func (f *Faulty) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failRemove
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.KV.Remove(ctx, key)
}
