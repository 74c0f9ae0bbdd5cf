package crowdfund

import (
	"fmt"
	"testing"
)

func TestQuorumReached(t *testing.T) {
	tests := []struct {
		approvals    uint64
		contributors uint64
		want         bool
	}{
		{0, 0, false},
		{5, 0, false},
		{0, 1, false},
		{1, 1, true},
		{1, 2, false},
		{2, 3, true},
		{13, 20, true},    // exactly 65%
		{129, 199, false}, // 64.8% floors to 64
		{130, 200, true},
		{64, 100, false},
		{65, 100, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.approvals, tt.contributors), func(t *testing.T) {
			if got := QuorumReached(tt.approvals, tt.contributors); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
