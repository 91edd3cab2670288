package ratelimiter_test

import (
	"testing"

	"github.com/modhub/review-queue/internal/ratelimiter"
)

func TestAllow_ExhaustsBurst(t *testing.T) {
	ml := ratelimiter.New(3)

	for i := 0; i < 3; i++ {
		if !ml.Allow(7) {
			t.Fatalf("call %d should be within the burst", i+1)
		}
	}
	if ml.Allow(7) {
		t.Fatal("burst exhausted, expected denial")
	}
}

func TestAllow_ModeratorsAreIndependent(t *testing.T) {
	ml := ratelimiter.New(1)

	if !ml.Allow(7) {
		t.Fatal("first moderator's first call should pass")
	}
	if ml.Allow(7) {
		t.Fatal("first moderator should now be limited")
	}
	if !ml.Allow(8) {
		t.Fatal("second moderator must have their own bucket")
	}
}
