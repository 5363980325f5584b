package utils

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Validator{
		validate:   validate,
		translator: trans,
	}, nil
}

// Struct 校验失败时返回包装了 domain.ErrValidationConflict 的中文错误
func (v *Validator) Struct(s any) error {
	return v.translate(v.validate.Struct(s))
}

func (v *Validator) Var(field any, tag string) error {
	return v.translate(v.validate.Var(field, tag))
}

func (v *Validator) translate(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrValidationConflict, err)
	}

	// 只返回第一个错误，和后端的提示保持一致
	return fmt.Errorf("%w: %s", domain.ErrValidationConflict, validationErrors[0].Translate(v.translator))
}

// ValidateSuggestion 检查服务器返回的建议排班是否落在请求的日期范围内，
// 是否只使用了请求中的人员，以及是否存在重复的班次
func ValidateSuggestion(shifts []domain.AssignedShift, req domain.SuggestRequest) error {
	start := domain.CalendarDay(req.StartDate)
	end := domain.CalendarDay(req.EndDate)

	for i, shift := range shifts {
		d := domain.CalendarDay(shift.Date)
		if d.Before(start) || d.After(end) {
			return fmt.Errorf("%w: 第 %d 项建议 %s 不在请求的日期范围内", domain.ErrValidationConflict, i+1, shift.Day())
		}

		if shift.AssignedSubjectID != "" && !slices.Contains(req.SubjectIDs, shift.AssignedSubjectID) {
			return fmt.Errorf("%w: 第 %d 项建议使用了未选择的人员 %s", domain.ErrValidationConflict, i+1, shift.AssignedSubjectID)
		}

		for j := 0; j < i; j++ {
			if shifts[j].Same(shift.ShiftKey) {
				return fmt.Errorf("%w: 第 %d 项和第 %d 项建议是同一个班次 %s", domain.ErrValidationConflict, j+1, i+1, shift.String())
			}
		}
	}

	return nil
}
