package store

import (
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"sales_tracker/internal/model"
)

// translate 把存储引擎错误映射为业务错误分类；无法识别的错误附带上下文后原样上抛。
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return model.Constraint(constraintMessage(se.ExtendedCode), err)
	}
	return errors.Wrap(err, op)
}

func constraintMessage(code sqlite3.ErrNoExtended) string {
	switch code {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return "a record with the same unique value already exists"
	case sqlite3.ErrConstraintForeignKey:
		return "referenced record does not exist or is still in use"
	case sqlite3.ErrConstraintCheck:
		return "value out of allowed range"
	case sqlite3.ErrConstraintNotNull:
		return "required field is missing"
	default:
		return "constraint violated"
	}
}

// notFoundOr returns a NotFound error for missing rows and translates the rest.
func notFoundOr(err error, entity string, id uint, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NotFound(entity, id)
	}
	return translate(err, op)
}

func likePattern(term string) string { return "%" + term + "%" }
