package address

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// Resolver загружает адреса пользователя и выбирает адрес по умолчанию.
type Resolver struct {
	service domain.AddressService
	logger  *log.Entry
}

// NewResolver создаёт резолвер адресов поверх удалённого сервиса.
func NewResolver(service domain.AddressService, logger *log.Entry) *Resolver {
	if logger == nil {
		logger = log.WithField("component", "address-resolver")
	}
	return &Resolver{
		service: service,
		logger:  logger,
	}
}

// Load возвращает адреса пользователя и предвыбранный адрес.
// Предвыбор: адрес с признаком по умолчанию, иначе первый в списке,
// иначе nil при пустом списке.
func (r *Resolver) Load(ctx context.Context, userID string) ([]domain.Address, *domain.Address, error) {
	addresses, err := r.service.ListAddresses(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	selected := PickDefault(addresses)
	if selected == nil {
		r.logger.WithField("user_id", userID).Debug("user has no saved addresses")
	}

	return addresses, selected, nil
}

// Create сохраняет новый адрес через удалённый сервис.
func (r *Resolver) Create(ctx context.Context, userID string, addr domain.Address) (domain.Address, error) {
	if errs := addr.ValidateInvariants(); len(errs) > 0 {
		return domain.Address{}, errs[0]
	}

	created, err := r.service.CreateAddress(ctx, userID, addr)
	if err != nil {
		return domain.Address{}, err
	}

	r.logger.WithFields(log.Fields{
		"user_id":    userID,
		"address_id": created.ID,
	}).Info("address created")

	return created, nil
}

// PickDefault выбирает адрес по умолчанию из списка.
func PickDefault(addresses []domain.Address) *domain.Address {
	if len(addresses) == 0 {
		return nil
	}

	for i := range addresses {
		if addresses[i].IsDefault {
			picked := addresses[i]
			return &picked
		}
	}

	picked := addresses[0]
	return &picked
}
