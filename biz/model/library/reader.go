package library

import (
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// MinReaderAge 是注册读者的最小年龄（年）。
const MinReaderAge = 12

// numberPattern 匹配 "YYYY/序号" 形式的业务编号（读者编号、借阅编号共用）。
var numberPattern = regexp.MustCompile(`^\d{4}/\d+$`)

// Reader 代表一位注册读者。
// ReaderNumber 形如 "2024/7"（年份/当年序号），由权威存储分配；
// 空字符串表示尚未分配。Username 与 PhoneNumber 各有二级索引。
type Reader struct {
	bun.BaseModel `bun:"table:readers,alias:r"`

	ReaderNumber string    `bun:"reader_number,pk" json:"reader_number"`
	Username     string    `bun:"username,notnull,unique" json:"username"`
	Name         string    `bun:"name,notnull" json:"name"`
	Birthdate    time.Time `bun:"birthdate,notnull" json:"birthdate"`
	PhoneNumber  string    `bun:"phone_number,notnull" json:"phone_number"`
	GDPRConsent  bool      `bun:"gdpr_consent,notnull" json:"gdpr_consent"`
}

// NewReader 创建并校验一位新的 Reader。编号由权威存储在保存时分配。
func NewReader(username, name string, birthdate time.Time, phoneNumber string, gdprConsent bool) (*Reader, error) {
	r := &Reader{
		Username:    username,
		Name:        name,
		Birthdate:   birthdate,
		PhoneNumber: phoneNumber,
		GDPRConsent: gdprConsent,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate 校验 Reader 的领域约束。
func (r *Reader) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ReaderNumber, validation.When(r.ReaderNumber != "", validation.Match(numberPattern))),
		validation.Field(&r.Username, validation.Required, is.EmailFormat),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Birthdate, validation.Required, validation.By(checkMinAge)),
		validation.Field(&r.PhoneNumber, validation.Required, validation.By(checkPhoneNumber)),
		validation.Field(&r.GDPRConsent, validation.Required.Error("必须同意 GDPR 条款")),
	)
}

// checkMinAge 要求读者至少年满 MinReaderAge 岁。
func checkMinAge(value any) error {
	birthdate, ok := value.(time.Time)
	if !ok || birthdate.IsZero() {
		return errors.New("出生日期无效")
	}
	if birthdate.AddDate(MinReaderAge, 0, 0).After(time.Now()) {
		return errors.New("读者未满最小年龄")
	}
	return nil
}

// checkPhoneNumber 通过 phonenumbers 解析校验电话号码。
// 没有国际前缀的号码按葡萄牙区号解析（与原始业务数据一致）。
func checkPhoneNumber(value any) error {
	s, _ := value.(string)
	parsed, err := phonenumbers.Parse(s, "PT")
	if err != nil {
		return errors.New("电话号码无法解析")
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return errors.New("电话号码无效")
	}
	return nil
}
