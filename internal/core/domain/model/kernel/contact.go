package kernel

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"parceldesk/internal/pkg/errs"
	"parceldesk/internal/pkg/guard"
)

// ErrContactIsNotConstructed is returned when validating a zero-value Contact.
var ErrContactIsNotConstructed = errs.NewValueIsRequiredError("contact must be created via NewContact")

// Contact is the structured contact data of a sender or recipient.
// It is an immutable value object; name is required, everything else is optional.
type Contact struct { //nolint:recvcheck //using for validation
	name    string
	address string
	phone   string
	email   string
	guard   guard.ConstructorGuard
}

// NewContact creates a Contact. Fields are trimmed; name must be non-blank and email,
// when present, must parse as an address.
func NewContact(name, address, phone, email string) (Contact, error) {
	c := Contact{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		c.setName(name),
		c.setEmail(email),
	); err != nil {
		return Contact{}, err
	}
	c.address = strings.TrimSpace(address)
	c.phone = strings.TrimSpace(phone)

	return c, nil
}

// Validate returns ErrContactIsNotConstructed for the zero value.
func (c Contact) Validate() error {
	return c.guard.Validate(ErrContactIsNotConstructed)
}

// IsZero reports whether c was never constructed (e.g. an absent sender).
func (c Contact) IsZero() bool {
	return c.Validate() != nil
}

// Name returns the contact's name.
func (c Contact) Name() string { return c.name }

// Address returns the postal address, possibly empty.
func (c Contact) Address() string { return c.address }

// Phone returns the phone number, possibly empty.
func (c Contact) Phone() string { return c.phone }

// Email returns the e-mail address, possibly empty.
func (c Contact) Email() string { return c.email }

// String renders the contact for logs.
func (c Contact) String() string {
	if c.IsZero() {
		return "Contact(<none>)"
	}
	return fmt.Sprintf("Contact(%s)", c.name)
}

func (c *Contact) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	c.name = name
	return nil
}

func (c *Contact) setEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("email", err)
	}
	c.email = email
	return nil
}
