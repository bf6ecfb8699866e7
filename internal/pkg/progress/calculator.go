// Package progress 计算订阅的权益消耗快照（课时 / 商品的已用、剩余、百分比和提醒）。
//
// 计算是纯函数：不访问数据库，不持有状态，可被任意并发调用。输入由调用方
// 预先加载好，任何缺失或格式不对的数据都退化为 0 权益和空提醒，不返回错误。
package progress

import (
	"math"
	"strings"

	"github.com/qs3c/coach_go_server/internal/pkg/entitlement"
)

const (
	DefaultBundleTitle = "Current bundle"
	DefaultStatus      = "active"

	// LowBalanceRatio 已用 / 总量达到该比例时提示余量不足
	LowBalanceRatio = 0.8
)

// 提醒文案，按固定顺序追加
const (
	AlertSessionsExhausted = "Sessions exhausted"
	AlertSessionsLow       = "Sessions are running low"
	AlertProductsExhausted = "Products exhausted"
	AlertProductsLow       = "Products are running low"
	AlertProductsOutpacing = "Product usage is outpacing sessions"
)

// 计入消耗的交付状态
const (
	DeliveryDelivered = "delivered"
	DeliveryConfirmed = "confirmed"
)

// Subscription 计算所需的订阅字段
type Subscription struct {
	ID               int64
	SessionsIncluded int
	SessionsUsed     int
	Status           string
}

// Bundle 计算所需的套餐字段，JSON 字段保持未解析的原始形态
type Bundle struct {
	ID           int64
	Title        string
	ProductsJSON any
	ServicesJSON any
	GoalsJSON    any
}

// Delivery 交付记录中参与统计的字段
type Delivery struct {
	ProductName string
	Quantity    float64
	Status      string
}

// Options 计算选项
type Options struct {
	// DedupeProductNames 同名（归一化后）商品行只查一次已交付数量。
	// 默认关闭，与历史行为保持一致：每一行都会累加一次。
	DedupeProductNames bool
}

// Snapshot 权益消耗快照，不落库
type Snapshot struct {
	SubscriptionID      int64    `json:"subscriptionId"`
	BundleDraftID       *int64   `json:"bundleDraftId"`
	BundleTitle         string   `json:"bundleTitle"`
	Status              string   `json:"status"`
	SessionsUsed        int      `json:"sessionsUsed"`
	SessionsIncluded    int      `json:"sessionsIncluded"`
	SessionsRemaining   int      `json:"sessionsRemaining"`
	SessionsProgressPct int      `json:"sessionsProgressPct"`
	ProductsUsed        float64  `json:"productsUsed"`
	ProductsIncluded    float64  `json:"productsIncluded"`
	ProductsRemaining   float64  `json:"productsRemaining"`
	ProductsProgressPct int      `json:"productsProgressPct"`
	Alerts              []string `json:"alerts"`
}

// Compute 计算单个订阅的消耗快照。bundle 和 delivered 都可以为 nil。
func Compute(sub Subscription, bundle *Bundle, delivered map[string]float64, opts Options) Snapshot {
	snap := Snapshot{
		SubscriptionID: sub.ID,
		BundleTitle:    DefaultBundleTitle,
		Status:         strings.TrimSpace(sub.Status),
		Alerts:         []string{},
	}
	if snap.Status == "" {
		snap.Status = DefaultStatus
	}

	var products []entitlement.ProductItem
	if bundle != nil {
		id := bundle.ID
		snap.BundleDraftID = &id
		if title := strings.TrimSpace(bundle.Title); title != "" {
			snap.BundleTitle = title
		}
		products = entitlement.ParseProducts(bundle.ProductsJSON)
	}

	snap.SessionsIncluded = sessionsIncluded(sub, bundle)
	snap.SessionsUsed = max(sub.SessionsUsed, 0)
	snap.SessionsRemaining = max(snap.SessionsIncluded-snap.SessionsUsed, 0)
	snap.SessionsProgressPct = percent(float64(snap.SessionsUsed), float64(snap.SessionsIncluded))

	snap.ProductsIncluded = entitlement.SumQuantity(products)
	snap.ProductsUsed = productsUsed(products, delivered, opts)
	snap.ProductsRemaining = math.Max(snap.ProductsIncluded-snap.ProductsUsed, 0)
	snap.ProductsProgressPct = percent(snap.ProductsUsed, snap.ProductsIncluded)

	snap.Alerts = alerts(snap)
	return snap
}

// sessionsIncluded 按优先级取课时权益：订阅自身 > 服务课时合计 > goals.sessionCount
func sessionsIncluded(sub Subscription, bundle *Bundle) int {
	if sub.SessionsIncluded > 0 {
		return sub.SessionsIncluded
	}
	if bundle == nil {
		return 0
	}
	if n := toSessions(entitlement.SumSessions(entitlement.ParseServices(bundle.ServicesJSON))); n > 0 {
		return n
	}
	return toSessions(entitlement.GoalSessionCount(bundle.GoalsJSON))
}

func toSessions(n float64) int {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0
	}
	return int(math.Round(n))
}

func productsUsed(products []entitlement.ProductItem, delivered map[string]float64, opts Options) float64 {
	if len(delivered) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(products))
	used := 0.0
	for _, p := range products {
		key := NormalizeProductName(p.Name)
		if opts.DedupeProductNames {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}
		if qty := delivered[key]; qty > 0 && !math.IsInf(qty, 0) {
			used += qty
		}
	}
	return used
}

func percent(used, included float64) int {
	if included <= 0 {
		return 0
	}
	pct := math.Round(math.Min(100, used/included*100))
	return int(math.Max(pct, 0))
}

func alerts(s Snapshot) []string {
	out := []string{}

	if s.SessionsIncluded > 0 {
		if s.SessionsUsed >= s.SessionsIncluded {
			out = append(out, AlertSessionsExhausted)
		} else if float64(s.SessionsUsed)/float64(s.SessionsIncluded) >= LowBalanceRatio {
			out = append(out, AlertSessionsLow)
		}
	}

	if s.ProductsIncluded > 0 {
		if s.ProductsUsed >= s.ProductsIncluded {
			out = append(out, AlertProductsExhausted)
		} else if s.ProductsUsed/s.ProductsIncluded >= LowBalanceRatio {
			out = append(out, AlertProductsLow)
		}
	}

	if s.SessionsUsed > 0 && s.ProductsUsed > float64(s.SessionsUsed+1) {
		out = append(out, AlertProductsOutpacing)
	}

	return out
}

// NormalizeProductName 商品名归一化：去首尾空白、转小写、合并连续空白
func NormalizeProductName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// DeliveredQtyByProductName 汇总已交付 / 已确认的交付数量，按归一化商品名分组
func DeliveredQtyByProductName(deliveries []Delivery) map[string]float64 {
	out := make(map[string]float64)
	for _, d := range deliveries {
		if d.Status != DeliveryDelivered && d.Status != DeliveryConfirmed {
			continue
		}
		key := NormalizeProductName(d.ProductName)
		if key == "" || d.Quantity <= 0 || math.IsNaN(d.Quantity) || math.IsInf(d.Quantity, 0) {
			continue
		}
		out[key] += d.Quantity
	}
	return out
}
