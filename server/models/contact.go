package models

import (
	"errors"

	"gorm.io/gorm"
)

var ErrContactNotFound = errors.New("contact not found")

// UNKNOWN_TYPE labels phones and addresses submitted without a type
const UNKNOWN_TYPE = "Unknown"

type Contact struct {
	BaseModel
	FirstName string    `json:"first_name" gorm:"size:50;not null"`
	LastName  string    `json:"last_name" gorm:"size:50;not null"`
	Emails    []Email   `json:"emails" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Phones    []Phone   `json:"phones" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Addresses []Address `json:"addresses" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

type Email struct {
	BaseModel
	EmailAddress string `json:"email_address" gorm:"size:100;not null"`
	ContactID    uint   `json:"contact_id" gorm:"not null;index"`
}

type Phone struct {
	BaseModel
	PhoneNumber string `json:"phone_number" gorm:"size:20;not null"`
	PhoneType   string `json:"phone_type" gorm:"size:50;default:Unknown"`
	ContactID   uint   `json:"contact_id" gorm:"not null;index"`
}

type Address struct {
	BaseModel
	StreetAddress string `json:"street_address" gorm:"size:100;not null"`
	City          string `json:"city" gorm:"size:50"`
	State         string `json:"state" gorm:"size:50"`
	ZipCode       string `json:"zip_code" gorm:"size:20"`
	Country       string `json:"country" gorm:"size:50"`
	AddressType   string `json:"address_type" gorm:"size:50;default:Unknown"`
	ContactID     uint   `json:"contact_id" gorm:"not null;index"`
}

// CreateContact inserts the contact along with every non-blank email, phone & address in 'form'
func CreateContact(form *ContactForm) (*Contact, error) {
	form.Normalize()

	contact := Contact{
		FirstName: form.FirstName,
		LastName:  form.LastName,
	}

	for i, emailAddress := range form.EmailAddresses {
		if emailAddress != "" {
			contact.Emails = append(contact.Emails, form.email(i))
		}
	}

	for i, phoneNumber := range form.PhoneNumbers {
		if phoneNumber != "" {
			contact.Phones = append(contact.Phones, form.phone(i))
		}
	}

	for i, streetAddress := range form.StreetAddresses {
		if streetAddress != "" {
			contact.Addresses = append(contact.Addresses, form.address(i))
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&contact).Error
	})
	if err != nil {
		return nil, err
	}

	return &contact, nil
}

// FindContact returns the contact with its emails, phones & addresses loaded
func FindContact(id interface{}) (*Contact, error) {
	contact := Contact{}

	err := db.Scopes(withChildren).First(&contact, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}

	return &contact, nil
}

// ListContacts returns a page of contacts matching 'search'
func ListContacts(search string, page int) ([]Contact, *Paging, error) {
	var total int64
	contacts := []Contact{}

	err := db.Model(&Contact{}).Scopes(matching(search)).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(matching(search), withChildren, paginate(page)).
		Order("contacts.id").Find(&contacts).Error
	if err != nil {
		return nil, nil, err
	}

	return contacts, newPaging(page, total), nil
}

// SearchContacts returns every contact matching 'search', ordered by id
func SearchContacts(search string) ([]Contact, error) {
	contacts := []Contact{}

	err := db.Scopes(matching(search), withChildren).Order("contacts.id").Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

// UpdateContact overwrites the contact's names & reconciles its child collections against 'form'.
// ErrContactNotFound is returned when the contact is missing or 'form' names a different contact.
func UpdateContact(id uint, form *ContactForm) (*Contact, error) {
	if form.ID != 0 && form.ID != id {
		return nil, ErrContactNotFound
	}

	form.Normalize()

	err := db.Transaction(func(tx *gorm.DB) error {
		contact := Contact{}
		err := tx.Scopes(withChildren).First(&contact, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactNotFound
		}
		if err != nil {
			return err
		}

		res := tx.Model(&Contact{}).Where("id = ?", id).Updates(map[string]interface{}{
			"first_name": form.FirstName,
			"last_name":  form.LastName,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrContactNotFound
		}

		if err = reconcileEmails(tx, &contact, form); err != nil {
			return err
		}

		if err = reconcilePhones(tx, &contact, form); err != nil {
			return err
		}

		return reconcileAddresses(tx, &contact, form)
	})
	if err != nil {
		return nil, err
	}

	return FindContact(id)
}

// DeleteContact removes the contact & its children. Deleting a missing contact is not an error.
func DeleteContact(id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contact_id = ?", id).Delete(&Email{}).Error; err != nil {
			return err
		}

		if err := tx.Where("contact_id = ?", id).Delete(&Phone{}).Error; err != nil {
			return err
		}

		if err := tx.Where("contact_id = ?", id).Delete(&Address{}).Error; err != nil {
			return err
		}

		return tx.Delete(&Contact{}, id).Error
	})
}

func ContactExists(id uint) (bool, error) {
	var count int64

	err := db.Model(&Contact{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ---------------------------------------------------------------------------------//
// Scopes
// --------------------------------------------------------------------------------//

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Emails", orderByID("emails")).
		Preload("Phones", orderByID("phones")).
		Preload("Addresses", orderByID("addresses"))
}

func orderByID(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id")
	}
}
