package models

import (
	"strings"

	"github.com/L4er70/ContactBook/utils"
	"gorm.io/gorm"
)

// ContactForm is a contact submission. Child collections arrive as parallel
// arrays, entry i of a collection is built from index i of each of its arrays.
type ContactForm struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`

	EmailIDs       []uint   `json:"email_ids"`
	EmailAddresses []string `json:"email_addresses" validate:"dive,omitempty,email,max=100"`

	PhoneIDs     []uint   `json:"phone_ids"`
	PhoneNumbers []string `json:"phone_numbers" validate:"dive,omitempty,phone,max=20"`
	PhoneTypes   []string `json:"phone_types" validate:"dive,max=50"`

	AddressIDs      []uint   `json:"address_ids"`
	StreetAddresses []string `json:"street_addresses" validate:"dive,max=100"`
	Cities          []string `json:"cities" validate:"dive,max=50"`
	States          []string `json:"states" validate:"dive,max=50"`
	ZipCodes        []string `json:"zip_codes" validate:"dive,max=20"`
	Countries       []string `json:"countries" validate:"dive,max=50"`
	AddressTypes    []string `json:"address_types" validate:"dive,max=50"`
}

// Normalize trims surrounding whitespace from every submitted value
func (form *ContactForm) Normalize() {
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)

	for _, values := range [][]string{
		form.EmailAddresses,
		form.PhoneNumbers, form.PhoneTypes,
		form.StreetAddresses, form.Cities, form.States, form.ZipCodes, form.Countries, form.AddressTypes,
	} {
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}
	}
}

func (form *ContactForm) email(i int) Email {
	return Email{EmailAddress: form.EmailAddresses[i]}
}

func (form *ContactForm) phone(i int) Phone {
	return Phone{
		PhoneNumber: form.PhoneNumbers[i],
		PhoneType:   typeOrUnknown(utils.ValueAt(form.PhoneTypes, i, "")),
	}
}

func (form *ContactForm) address(i int) Address {
	return Address{
		StreetAddress: form.StreetAddresses[i],
		City:          utils.ValueAt(form.Cities, i, ""),
		State:         utils.ValueAt(form.States, i, ""),
		ZipCode:       utils.ValueAt(form.ZipCodes, i, ""),
		Country:       utils.ValueAt(form.Countries, i, ""),
		AddressType:   typeOrUnknown(utils.ValueAt(form.AddressTypes, i, "")),
	}
}

// childUpdate pairs an existing child row with the submitted entry that overwrites it
type childUpdate struct {
	ID    uint
	Index int
}

type reconcilePlan struct {
	Deletes []uint
	Updates []childUpdate
	Inserts []int
}

// planReconcile diffs one child collection. Existing rows whose id was not submitted are
// deleted, entries carrying an id owned by the contact update that row and entries without
// an id are inserted. Entries with a blank required value are skipped, so a submitted id
// with a blank value leaves its row untouched. Ids the contact does not own are ignored.
func planReconcile(existingIDs []uint, submittedIDs []uint, required []string) reconcilePlan {
	plan := reconcilePlan{}

	submitted := make(map[uint]bool, len(submittedIDs))
	for _, id := range submittedIDs {
		if id > 0 {
			submitted[id] = true
		}
	}

	owned := make(map[uint]bool, len(existingIDs))
	for _, id := range existingIDs {
		owned[id] = true
		if !submitted[id] {
			plan.Deletes = append(plan.Deletes, id)
		}
	}

	for i, value := range required {
		if utils.IsBlank(value) {
			continue
		}

		var id uint
		if i < len(submittedIDs) {
			id = submittedIDs[i]
		}

		switch {
		case id == 0:
			plan.Inserts = append(plan.Inserts, i)
		case owned[id]:
			plan.Updates = append(plan.Updates, childUpdate{ID: id, Index: i})
		}
	}

	return plan
}

func reconcileEmails(tx *gorm.DB, contact *Contact, form *ContactForm) error {
	existingIDs := []uint{}
	for _, email := range contact.Emails {
		existingIDs = append(existingIDs, email.ID)
	}

	plan := planReconcile(existingIDs, form.EmailIDs, form.EmailAddresses)

	if len(plan.Deletes) > 0 {
		err := tx.Where("contact_id = ? AND id IN ?", contact.ID, plan.Deletes).Delete(&Email{}).Error
		if err != nil {
			return err
		}
	}

	for _, update := range plan.Updates {
		email := form.email(update.Index)
		err := tx.Model(&Email{}).Where("id = ? AND contact_id = ?", update.ID, contact.ID).
			Updates(map[string]interface{}{"email_address": email.EmailAddress}).Error
		if err != nil {
			return err
		}
	}

	if len(plan.Inserts) == 0 {
		return nil
	}

	emails := []Email{}
	for _, i := range plan.Inserts {
		email := form.email(i)
		email.ContactID = contact.ID
		emails = append(emails, email)
	}

	return tx.Create(&emails).Error
}

func reconcilePhones(tx *gorm.DB, contact *Contact, form *ContactForm) error {
	existingIDs := []uint{}
	for _, phone := range contact.Phones {
		existingIDs = append(existingIDs, phone.ID)
	}

	plan := planReconcile(existingIDs, form.PhoneIDs, form.PhoneNumbers)

	if len(plan.Deletes) > 0 {
		err := tx.Where("contact_id = ? AND id IN ?", contact.ID, plan.Deletes).Delete(&Phone{}).Error
		if err != nil {
			return err
		}
	}

	for _, update := range plan.Updates {
		phone := form.phone(update.Index)
		err := tx.Model(&Phone{}).Where("id = ? AND contact_id = ?", update.ID, contact.ID).
			Updates(map[string]interface{}{
				"phone_number": phone.PhoneNumber,
				"phone_type":   phone.PhoneType,
			}).Error
		if err != nil {
			return err
		}
	}

	if len(plan.Inserts) == 0 {
		return nil
	}

	phones := []Phone{}
	for _, i := range plan.Inserts {
		phone := form.phone(i)
		phone.ContactID = contact.ID
		phones = append(phones, phone)
	}

	return tx.Create(&phones).Error
}

func reconcileAddresses(tx *gorm.DB, contact *Contact, form *ContactForm) error {
	existingIDs := []uint{}
	for _, address := range contact.Addresses {
		existingIDs = append(existingIDs, address.ID)
	}

	plan := planReconcile(existingIDs, form.AddressIDs, form.StreetAddresses)

	if len(plan.Deletes) > 0 {
		err := tx.Where("contact_id = ? AND id IN ?", contact.ID, plan.Deletes).Delete(&Address{}).Error
		if err != nil {
			return err
		}
	}

	for _, update := range plan.Updates {
		address := form.address(update.Index)
		err := tx.Model(&Address{}).Where("id = ? AND contact_id = ?", update.ID, contact.ID).
			Updates(map[string]interface{}{
				"street_address": address.StreetAddress,
				"city":           address.City,
				"state":          address.State,
				"zip_code":       address.ZipCode,
				"country":        address.Country,
				"address_type":   address.AddressType,
			}).Error
		if err != nil {
			return err
		}
	}

	if len(plan.Inserts) == 0 {
		return nil
	}

	addresses := []Address{}
	for _, i := range plan.Inserts {
		address := form.address(i)
		address.ContactID = contact.ID
		addresses = append(addresses, address)
	}

	return tx.Create(&addresses).Error
}

func typeOrUnknown(value string) string {
	if utils.IsBlank(value) {
		return UNKNOWN_TYPE
	}
	return value
}
