// Package session keeps client-side delegation state in memory: one proxy
// key and wallet attestation per session, reused across many action
// signatures. Nothing here is persisted; discarding a session discards its
// proxy key.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/open-frames/frame-actions-go/pkg/action"
	"github.com/open-frames/frame-actions-go/pkg/delegation"
	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner"
	"github.com/open-frames/frame-actions-go/pkg/typedDataSigner/inMemorySigner"
	"github.com/open-frames/frame-actions-go/pkg/types"
)

// Session pairs a delegation with the proxy signer that can exercise it.
type Session struct {
	ID          string
	Delegation  *types.SignedProxyKeyBundle
	ProxySigner typedDataSigner.ITypedDataSigner
	CreatedAt   time.Time
}

// SignAction signs a single action body with the session's proxy key.
func (s *Session) SignAction(ctx context.Context, body types.FrameActionBody) ([]byte, error) {
	return action.SignAction(ctx, body, s.ProxySigner)
}

// BuildRequest produces a full wire payload for body under this session's
// delegation.
func (s *Session) BuildRequest(ctx context.Context, body types.FrameActionBody) (*types.FrameActionRequest, error) {
	return action.BuildRequest(ctx, body, s.ProxySigner, s.Delegation)
}

// Store manages active sessions with thread-safe access.
type Store struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	sessions map[string]*Session
}

func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create mints a proxy key, obtains the wallet attestation, and registers
// the resulting session under a fresh id.
func (st *Store) Create(ctx context.Context, walletSigner typedDataSigner.ITypedDataSigner) (*Session, error) {
	signed, proxyKey, err := delegation.CreateDelegation(ctx, walletSigner)
	if err != nil {
		return nil, fmt.Errorf("failed to create delegation: %w", err)
	}

	session := &Session{
		ID:          uuid.New().String(),
		Delegation:  signed,
		ProxySigner: inMemorySigner.NewInMemorySigner(proxyKey, st.logger),
		CreatedAt:   time.Now(),
	}

	st.mu.Lock()
	st.sessions[session.ID] = session
	st.mu.Unlock()

	st.logger.Info("Created frame action session",
		zap.String("sessionId", session.ID),
		zap.String("wallet", signed.WalletAddress.Hex()),
		zap.String("proxyPublicKey", signed.Bundle.ProxyPublicKey.Hex()),
	)
	return session, nil
}

// Get returns the session with the given id, if any.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	session, ok := st.sessions[id]
	return session, ok
}

// Remove drops a session and with it the only handle on its proxy key.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Count returns the number of active sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
