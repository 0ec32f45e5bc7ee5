package gateway

import (
	"context"
	"net/http"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// addressDTO — форма адреса на проводе удалённого API.
type addressDTO struct {
	ID           string `json:"id,omitempty"`
	FullName     string `json:"fullName"`
	PhoneNumber  string `json:"phoneNumber"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	Ward         string `json:"ward"`
	District     string `json:"district"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode,omitempty"`
	IsDefault    bool   `json:"isDefault"`
}

func (d addressDTO) toDomain() domain.Address {
	return domain.Address{
		ID:           d.ID,
		FullName:     d.FullName,
		PhoneNumber:  d.PhoneNumber,
		AddressLine1: d.AddressLine1,
		AddressLine2: d.AddressLine2,
		Ward:         d.Ward,
		District:     d.District,
		City:         d.City,
		PostalCode:   d.PostalCode,
		IsDefault:    d.IsDefault,
	}
}

func addressToDTO(addr domain.Address) addressDTO {
	return addressDTO{
		ID:           addr.ID,
		FullName:     addr.FullName,
		PhoneNumber:  addr.PhoneNumber,
		AddressLine1: addr.AddressLine1,
		AddressLine2: addr.AddressLine2,
		Ward:         addr.Ward,
		District:     addr.District,
		City:         addr.City,
		PostalCode:   addr.PostalCode,
		IsDefault:    addr.IsDefault,
	}
}

// AddressClient реализует domain.AddressService поверх шлюза.
type AddressClient struct {
	client *Client
}

// NewAddressClient создаёт адаптер адресов.
func NewAddressClient(client *Client) *AddressClient {
	return &AddressClient{client: client}
}

// ListAddresses выполняет GET /user/addresses.
// Пользователь определяется bearer-токеном; userID здесь не участвует
// в запросе и оставлен в сигнатуре порта для контрактной симметрии.
func (a *AddressClient) ListAddresses(ctx context.Context, _ string) ([]domain.Address, error) {
	var dtos []addressDTO
	if err := a.client.do(ctx, http.MethodGet, "/user/addresses", nil, nil, &dtos); err != nil {
		return nil, err
	}

	result := make([]domain.Address, 0, len(dtos))
	for _, dto := range dtos {
		result = append(result, dto.toDomain())
	}
	return result, nil
}

// CreateAddress выполняет POST /user/addresses.
func (a *AddressClient) CreateAddress(ctx context.Context, _ string, addr domain.Address) (domain.Address, error) {
	var created addressDTO
	if err := a.client.do(ctx, http.MethodPost, "/user/addresses", nil, addressToDTO(addr), &created); err != nil {
		return domain.Address{}, err
	}
	return created.toDomain(), nil
}

var _ domain.AddressService = (*AddressClient)(nil)
