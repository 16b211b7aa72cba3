package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Trans 定义全局翻译器 (导出供 response.go 使用)
var Trans ut.Translator

// InitTrans 初始化翻译器
// locale 参数指定需要初始化的语言，例如 "zh" 或 "en"
func InitTrans(locale string) (err error) {

	// 在 Gin v1.9+ 中 binding.Validator 可能为 nil，需要先初始化
	if binding.Validator == nil {
		binding.Validator = &defaultValidator{validator: validator.New()}
	}

	// 修改 gin 框架中的 Validator 引擎属性，实现自定制
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {

		// 注册一个获取 json tag 的自定义方法
		// 前端传参使用的是 json 字段名，报错信息也应该对应 json 字段名
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		zhT := zh.New() // 初始化中文翻译器
		enT := en.New() // 初始化英文翻译器

		// 第一个参数是备用（fallback）的语言环境，当找不到匹配语言时使用该语言
		uni := ut.New(enT, zhT, enT)

		var ok bool
		Trans, ok = uni.GetTranslator(locale)
		if !ok {
			return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
		}

		// 根据 locale 注册对应的默认翻译规则
		switch locale {
		case "en":
			err = en_translations.RegisterDefaultTranslations(v, Trans)
		case "zh":
			err = zh_translations.RegisterDefaultTranslations(v, Trans)
		default:
			err = en_translations.RegisterDefaultTranslations(v, Trans)
		}
	}
	return
}

// RemoveTopStruct 去除提示信息中的结构体名称 (导出供 response.go 使用)
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string)
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}

// defaultValidator 是一个实现了 StructValidator 接口的结构体
// 用于在 Gin v1.9+ 中初始化 binding.Validator
type defaultValidator struct {
	validator *validator.Validate
}

// ValidateStruct 实现 StructValidator 接口的 ValidateStruct 方法
func (v *defaultValidator) ValidateStruct(obj interface{}) error {
	return v.validator.Struct(obj)
}

// Engine 实现 StructValidator 接口的 Engine 方法
func (v *defaultValidator) Engine() interface{} {
	return v.validator
}
