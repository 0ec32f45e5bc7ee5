package domain

// Address — адрес доставки пользователя. Принадлежит аккаунту на стороне
// удалённого API; checkout-сессия ссылается на него по ID.
type Address struct {
	ID           string
	FullName     string
	PhoneNumber  string
	AddressLine1 string
	AddressLine2 string
	Ward         string
	District     string
	City         string
	PostalCode   string
	IsDefault    bool
}

// ValidateInvariants проверяет минимальные требования к создаваемому адресу.
func (a *Address) ValidateInvariants() []error {
	var errs []error

	if a.FullName == "" {
		errs = append(errs, ErrAddressNameRequired)
	}
	if a.PhoneNumber == "" {
		errs = append(errs, ErrAddressPhoneRequired)
	}
	if a.AddressLine1 == "" {
		errs = append(errs, ErrAddressLineRequired)
	}
	if a.City == "" {
		errs = append(errs, ErrAddressCityRequired)
	}

	return errs
}
