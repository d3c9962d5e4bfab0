package kakao

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nextstep/gift/internal/domain/orders"
)

// Channel labels failures recorded by the notifier.
const Channel = "kakao"

// Sender delivers a text message to the token owner.
type Sender interface {
	SendToMe(ctx context.Context, accessToken, text, linkURL string) error
}

// FailureRecorder counts undelivered notifications.
type FailureRecorder interface {
	NotificationFailed(channel string)
}

// Notifier sends an order summary to members who logged in with Kakao.
// Delivery is best effort: failures are logged and counted, never returned.
type Notifier struct {
	sender   Sender
	logger   *slog.Logger
	failures FailureRecorder
	linkURL  string
}

// NewNotifier builds a notifier. failures may be nil.
func NewNotifier(sender Sender, logger *slog.Logger, failures FailureRecorder, linkURL string) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{sender: sender, logger: logger, failures: failures, linkURL: linkURL}
}

// OrderPlaced implements orders.Notifier.
func (n *Notifier) OrderPlaced(ctx context.Context, p orders.Placement) {
	token := p.Member.KakaoAccessToken
	if token == "" {
		return
	}

	if err := n.sender.SendToMe(ctx, token, OrderMessage(p), n.linkURL); err != nil {
		n.logger.Warn("kakao order notification failed",
			"order_id", p.Order.ID,
			"member_id", p.Member.ID,
			"err", err,
		)
		if n.failures != nil {
			n.failures.NotificationFailed(Channel)
		}
	}
}

// OrderMessage renders the text sent for a placed order.
func OrderMessage(p orders.Placement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[선물하기] 주문이 완료되었습니다.\n")
	fmt.Fprintf(&b, "상품: %s (%s)\n", p.Product.Name, p.Option.Name)
	fmt.Fprintf(&b, "수량: %d\n", p.Order.Quantity)
	fmt.Fprintf(&b, "결제 포인트: %d", p.Total)
	if p.Order.Message != "" {
		fmt.Fprintf(&b, "\n메시지: %s", p.Order.Message)
	}
	return b.String()
}
