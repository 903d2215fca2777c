package library

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

// Lending 代表一次借阅。
// LendingNumber 形如 "2024/7"（年份/当年序号），由权威存储分配。
// 关联实体只保存标识键（ISBN、ReaderNumber）。
type Lending struct {
	bun.BaseModel `bun:"table:lendings,alias:l"`

	LendingNumber string     `bun:"lending_number,pk" json:"lending_number"`
	ISBN          string     `bun:"isbn,notnull" json:"isbn"`
	ReaderNumber  string     `bun:"reader_number,notnull" json:"reader_number"`
	StartDate     time.Time  `bun:"start_date,notnull" json:"start_date"`
	LimitDate     time.Time  `bun:"limit_date,notnull" json:"limit_date"`
	ReturnedDate  *time.Time `bun:"returned_date" json:"returned_date,omitempty"`
	FineCents     int64      `bun:"fine_cents" json:"fine_cents"`
}

// NewLending 创建并校验一次新的借阅。编号由权威存储在保存时分配。
func NewLending(isbn, readerNumber string, startDate time.Time, durationDays int) (*Lending, error) {
	l := &Lending{
		ISBN:         isbn,
		ReaderNumber: readerNumber,
		StartDate:    startDate,
		LimitDate:    startDate.AddDate(0, 0, durationDays),
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate 校验 Lending 的领域约束。
func (l *Lending) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.LendingNumber, validation.When(l.LendingNumber != "", validation.Match(numberPattern))),
		validation.Field(&l.ISBN, validation.Required, validation.By(checkISBN13)),
		validation.Field(&l.ReaderNumber, validation.Required, validation.Match(numberPattern)),
		validation.Field(&l.StartDate, validation.Required),
		validation.Field(&l.LimitDate, validation.Required, validation.By(l.checkLimitAfterStart)),
	)
}

func (l *Lending) checkLimitAfterStart(any) error {
	if !l.LimitDate.After(l.StartDate) {
		return validation.NewError("validation_limit_date", "归还期限必须晚于起借日期")
	}
	return nil
}

// IsOutstanding 表示本次借阅尚未归还。
func (l *Lending) IsOutstanding() bool {
	return l.ReturnedDate == nil
}

// IsOverdue 判断在 now 时刻本次借阅是否已逾期。
// 已归还的借阅按归还日期判断，未归还的按当前时间判断。
func (l *Lending) IsOverdue(now time.Time) bool {
	ref := now
	if l.ReturnedDate != nil {
		ref = *l.ReturnedDate
	}
	return ref.After(l.LimitDate)
}

// DaysOverdue 返回在 now 时刻的逾期天数（不足一天向上取整），未逾期返回 0。
func (l *Lending) DaysOverdue(now time.Time) int {
	ref := now
	if l.ReturnedDate != nil {
		ref = *l.ReturnedDate
	}
	if !ref.After(l.LimitDate) {
		return 0
	}
	days := int(ref.Sub(l.LimitDate).Hours() / 24)
	if ref.Sub(l.LimitDate)%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// MarkReturned 登记归还并按每日罚金计算罚款（单位：分）。
// 重复归还是幂等的：已归还的借阅不会被再次修改。
func (l *Lending) MarkReturned(returnedAt time.Time, finePerDayCents int64) {
	if l.ReturnedDate != nil {
		return
	}
	t := returnedAt
	l.ReturnedDate = &t
	l.FineCents = int64(l.DaysOverdue(returnedAt)) * finePerDayCents
}
