package linebridge

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/metrics"
	"github.com/buildhub-th/procure-backend/internal/users/domain"
)

func strPtr(s string) *string { return &s }

// memStore mirrors the repository: lookups and the binding write happen
// under one lock, standing in for the Firestore transaction.
type memStore struct {
	mu       sync.Mutex
	profiles []*domain.UserProfile
	bindErr  error
}

func (m *memStore) FindByLineUserID(_ context.Context, lineUserID string) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.LineID() == lineUserID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotLinked
}

func (m *memStore) Bind(_ context.Context, phone, lineUserID string, pic *string) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bindErr != nil {
		return nil, m.bindErr
	}
	var byPhone *domain.UserProfile
	var byLine []*domain.UserProfile
	for _, p := range m.profiles {
		if byPhone == nil && p.Phone() == phone {
			byPhone = p
		}
		if p.LineID() == lineUserID {
			byLine = append(byLine, p)
		}
	}
	if err := domain.ValidateBinding(byPhone, byLine, lineUserID); err != nil {
		return nil, err
	}
	byPhone.LineUserID = strPtr(lineUserID)
	byPhone.LinePic = pic
	cp := *byPhone
	return &cp, nil
}

func (m *memStore) get(uid string) *domain.UserProfile {
	for _, p := range m.profiles {
		if p.UID == uid {
			return p
		}
	}
	return nil
}

type tokenFunc func(ctx context.Context, uid string) (string, error)

func (f tokenFunc) CustomToken(ctx context.Context, uid string) (string, error) { return f(ctx, uid) }

var okTokens = tokenFunc(func(_ context.Context, uid string) (string, error) { return "token-for-" + uid, nil })

type fixedVerifier struct {
	sub string
	err error
}

func (v fixedVerifier) Verify(string) (string, error) { return v.sub, v.err }

func seed() *memStore {
	return &memStore{profiles: []*domain.UserProfile{
		{UID: "uid-a", Role: domain.RolePM, IsActive: true, PhoneNumber: strPtr("0812345678")},
		{UID: "uid-b", Role: domain.RoleEngineer, IsActive: true, PhoneNumber: strPtr("0899999999"), LineUserID: strPtr("X")},
		{UID: "uid-off", Role: domain.RolePM, IsActive: false, PhoneNumber: strPtr("0822222222"), LineUserID: strPtr("OFF")},
	}}
}

func TestExchange(t *testing.T) {
	ctx := context.Background()
	svc := NewService(seed(), okTokens, Options{Metrics: metrics.New()})

	token, err := svc.Exchange(ctx, "X", "")
	require.NoError(t, err)
	assert.Equal(t, "token-for-uid-b", token)

	_, err = svc.Exchange(ctx, "  ", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	_, err = svc.Exchange(ctx, "U-unknown", "")
	assert.ErrorIs(t, err, domain.ErrNotLinked)
	assert.Equal(t, "User not linked", apperrors.Message(err))

	_, err = svc.Exchange(ctx, "OFF", "")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestExchange_TokenServiceFailure(t *testing.T) {
	failing := tokenFunc(func(context.Context, string) (string, error) { return "", errors.New("unavailable") })
	_, err := NewService(seed(), failing, Options{}).Exchange(context.Background(), "X", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindService))
}

func TestExchange_IDToken(t *testing.T) {
	ctx := context.Background()

	svc := NewService(seed(), okTokens, Options{Verifier: fixedVerifier{sub: "X"}})
	_, err := svc.Exchange(ctx, "X", "jwt")
	require.NoError(t, err)

	svc = NewService(seed(), okTokens, Options{Verifier: fixedVerifier{sub: "someone-else"}})
	_, err = svc.Exchange(ctx, "X", "jwt")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))

	svc = NewService(seed(), okTokens, Options{Verifier: fixedVerifier{err: errors.New("expired")}})
	_, err = svc.Exchange(ctx, "X", "jwt")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))

	svc = NewService(seed(), okTokens, Options{Verifier: fixedVerifier{sub: "X"}, RequireIDToken: true})
	_, err = svc.Exchange(ctx, "X", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
}

func TestBind_Scenario(t *testing.T) {
	store := seed()
	svc := NewService(store, okTokens, Options{})

	res, err := svc.Bind(context.Background(), BindRequest{
		PhoneNumber: "0812345678",
		LineUserID:  "U123",
		LinePic:     strPtr("http://x/p.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-a", res.UID)
	assert.Equal(t, "token-for-uid-a", res.CustomToken)
	assert.Equal(t, "U123", store.get("uid-a").LineID())
	assert.Equal(t, "http://x/p.png", *store.get("uid-a").LinePic)
}

func TestBind_Idempotent(t *testing.T) {
	store := seed()
	svc := NewService(store, okTokens, Options{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := svc.Bind(ctx, BindRequest{PhoneNumber: "081-234-5678", LineUserID: "U123"})
		require.NoError(t, err)
		assert.Equal(t, "uid-a", res.UID)
	}
	assert.Equal(t, "U123", store.get("uid-a").LineID())
}

func TestBind_Conflicts(t *testing.T) {
	ctx := context.Background()
	store := seed()
	svc := NewService(store, okTokens, Options{})
	_, err := svc.Bind(ctx, BindRequest{PhoneNumber: "0812345678", LineUserID: "U123"})
	require.NoError(t, err)

	// profile A's phone with a different, unused LINE id
	_, err = svc.Bind(ctx, BindRequest{PhoneNumber: "0812345678", LineUserID: "Y"})
	assert.ErrorIs(t, err, domain.ErrPhoneLinkedToOtherLine)

	// an unbound profile's phone with a LINE id owned by profile B
	store.profiles = append(store.profiles, &domain.UserProfile{UID: "uid-c", IsActive: true, PhoneNumber: strPtr("0833333333")})
	_, err = svc.Bind(ctx, BindRequest{PhoneNumber: "0833333333", LineUserID: "X"})
	assert.ErrorIs(t, err, domain.ErrLineLinkedToOtherUser)
}

func TestBind_InputErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(seed(), okTokens, Options{})

	_, err := svc.Bind(ctx, BindRequest{PhoneNumber: "0812345678"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	_, err = svc.Bind(ctx, BindRequest{PhoneNumber: "0800000000", LineUserID: "U1"})
	assert.ErrorIs(t, err, domain.ErrPhoneNotRegistered)

	_, err = svc.Bind(ctx, BindRequest{PhoneNumber: "abc", LineUserID: "U1"})
	assert.ErrorIs(t, err, domain.ErrPhoneNotRegistered)
}

func TestBind_ConcurrentSamePhoneHasOneWinner(t *testing.T) {
	store := seed()
	svc := NewService(store, okTokens, Options{})

	ids := []string{"L1", "L2", "L3", "L4", "L5"}
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := svc.Bind(context.Background(), BindRequest{PhoneNumber: "0812345678", LineUserID: id}); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}
