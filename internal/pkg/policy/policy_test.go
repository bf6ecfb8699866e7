package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	res := Resource{Kind: "subscription", TrainerID: 10, ClientID: 20}

	trainer := Actor{UserID: 10, Role: RoleTrainer}
	client := Actor{UserID: 20, Role: RoleClient}
	otherTrainer := Actor{UserID: 11, Role: RoleTrainer}
	admin := Actor{UserID: 1, Role: RoleAdmin}

	cases := []struct {
		name    string
		actor   Actor
		action  Action
		allowed bool
	}{
		{"trainer reads", trainer, ActionRead, true},
		{"trainer manages", trainer, ActionManage, true},
		{"trainer cannot respond", trainer, ActionRespond, false},
		{"client reads", client, ActionRead, true},
		{"client cannot manage", client, ActionManage, false},
		{"client responds", client, ActionRespond, true},
		{"other trainer reads", otherTrainer, ActionRead, false},
		{"other trainer manages", otherTrainer, ActionManage, false},
		{"admin manages", admin, ActionManage, true},
		{"anonymous", Actor{}, ActionRead, false},
		{"unknown action", trainer, Action("delete_everything"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(tc.actor, tc.action, res)
			assert.Equal(t, tc.allowed, d.Allowed)
			if !d.Allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestDecide_RoleMustMatchSide(t *testing.T) {
	// 同一个 ID 以客户身份出现在 trainer 一侧不算拥有者
	res := Resource{Kind: "bundle", TrainerID: 5}
	d := Decide(Actor{UserID: 5, Role: RoleClient}, ActionRead, res)
	assert.False(t, d.Allowed)
}

func TestCanCreateAsTrainer(t *testing.T) {
	assert.True(t, CanCreateAsTrainer(Actor{UserID: 1, Role: RoleTrainer}).Allowed)
	assert.True(t, CanCreateAsTrainer(Actor{UserID: 1, Role: RoleAdmin}).Allowed)
	assert.False(t, CanCreateAsTrainer(Actor{UserID: 1, Role: RoleClient}).Allowed)
	assert.False(t, CanCreateAsTrainer(Actor{}).Allowed)
}
