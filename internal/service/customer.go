package service

import (
	"context"
	"strings"

	"sales_tracker/internal/model"
	"sales_tracker/internal/store"
)

// CustomerInput is the payload for creating a customer.
type CustomerInput struct {
	LastName  string
	FirstName string
	Email     string
	Phone     *string
	City      *string
}

type CustomerService struct {
	customers *store.Customers
	*hooks
}

// Create 校验并规范化输入（姓名首字母大写、邮箱小写），邮箱重复返回 ConstraintViolation。
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	if err := required("last name", in.LastName); err != nil {
		return nil, err
	}
	if err := required("first name", in.FirstName); err != nil {
		return nil, err
	}
	if err := required("email", in.Email); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)
	if !validEmail(email) {
		return nil, model.Validation("invalid email %q", in.Email)
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	c := &model.Customer{
		LastName:  titleCase(in.LastName),
		FirstName: titleCase(in.FirstName),
		Email:     email,
		Phone:     optional(in.Phone, nil),
		City:      optional(in.City, titleCase),
	}
	if _, err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	s.log.WithField("customer_id", c.ID).Info("customer created")
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*model.Customer, error) {
	return s.customers.Get(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, f model.CustomerFilter) ([]model.Customer, error) {
	f.Search = strings.TrimSpace(f.Search)
	if f.City != "" {
		f.City = titleCase(f.City)
	}
	return s.customers.List(ctx, f)
}

func (s *CustomerService) Update(ctx context.Context, id uint, u model.CustomerUpdate) error {
	if _, err := s.customers.Get(ctx, id); err != nil {
		return err
	}
	if u.LastName != nil {
		if err := required("last name", *u.LastName); err != nil {
			return err
		}
		v := titleCase(*u.LastName)
		u.LastName = &v
	}
	if u.FirstName != nil {
		if err := required("first name", *u.FirstName); err != nil {
			return err
		}
		v := titleCase(*u.FirstName)
		u.FirstName = &v
	}
	if u.Email != nil {
		email := normalizeEmail(*u.Email)
		if !validEmail(email) {
			return model.Validation("invalid email %q", *u.Email)
		}
		if err := s.ensureEmailFree(ctx, email, id); err != nil {
			return err
		}
		u.Email = &email
	}
	if u.Phone != nil {
		v := strings.TrimSpace(*u.Phone)
		u.Phone = &v
	}
	if u.City != nil {
		v := titleCase(*u.City)
		u.City = &v
	}
	if err := s.customers.Update(ctx, id, u); err != nil {
		return err
	}
	s.afterWrite(ctx)
	return nil
}

func (s *CustomerService) Count(ctx context.Context) (int64, error) {
	return s.customers.Count(ctx)
}

func (s *CustomerService) Cities(ctx context.Context) ([]string, error) {
	return s.customers.Cities(ctx)
}

// ensureEmailFree fails when another customer (id != self) already uses email.
func (s *CustomerService) ensureEmailFree(ctx context.Context, email string, self uint) error {
	existing, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return model.Constraint("email "+email+" is already in use", nil)
	}
	return nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// validEmail 简单格式校验：local@domain，domain 需含点。
func validEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	if strings.Contains(domain, "@") || strings.ContainsAny(email, " \t") {
		return false
	}
	return strings.Contains(domain, ".")
}
