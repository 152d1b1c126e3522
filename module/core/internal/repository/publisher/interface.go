package publisher

import (
	"context"

	"github.com/petfence/petfence/module/core/domain"
)

type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.Alert) error
}
