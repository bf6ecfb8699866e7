// Package policy 统一的访问控制判定：给定操作者和资源，返回是否允许。
package policy

// 角色
const (
	RoleTrainer = "trainer"
	RoleClient  = "client"
	RoleAdmin   = "admin"
)

// Action 操作类型
type Action string

const (
	ActionRead    Action = "read"
	ActionManage  Action = "manage"  // 创建、修改、状态流转
	ActionRespond Action = "respond" // 客户对交付的确认 / 异议
)

// Actor 发起请求的用户
type Actor struct {
	UserID int64
	Role   string
}

// Resource 被访问的资源归属
type Resource struct {
	Kind      string
	TrainerID int64
	ClientID  int64
}

// Decision 判定结果
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Decide 判定 actor 能否对 res 执行 action
func Decide(actor Actor, action Action, res Resource) Decision {
	if actor.UserID == 0 {
		return deny("anonymous")
	}
	if actor.Role == RoleAdmin {
		return allow()
	}

	isTrainer := actor.Role == RoleTrainer && res.TrainerID != 0 && actor.UserID == res.TrainerID
	isClient := actor.Role == RoleClient && res.ClientID != 0 && actor.UserID == res.ClientID

	switch action {
	case ActionRead:
		if isTrainer || isClient {
			return allow()
		}
	case ActionManage:
		if isTrainer {
			return allow()
		}
	case ActionRespond:
		if isClient {
			return allow()
		}
	default:
		return deny("unknown action")
	}
	return deny("not an owner of " + res.Kind)
}

// CanCreateAsTrainer 只有教练（和管理员）可以创建套餐、订阅等资源
func CanCreateAsTrainer(actor Actor) Decision {
	if actor.UserID == 0 {
		return deny("anonymous")
	}
	if actor.Role == RoleTrainer || actor.Role == RoleAdmin {
		return allow()
	}
	return deny("trainer role required")
}
