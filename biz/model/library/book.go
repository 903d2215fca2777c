package library

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

// Book 代表一本图书。
// ISBN（ISBN-13）是业务主键。关联实体只保存标识键：
// Genre 用类别名引用，作者用 AuthorNumber 列表引用。
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ISBN          string  `bun:"isbn,pk" json:"isbn"`
	Title         string  `bun:"title,notnull" json:"title"`
	Description   string  `bun:"description" json:"description,omitempty"`
	Genre         string  `bun:"genre,notnull" json:"genre"`
	AuthorNumbers []int64 `bun:"author_numbers,array" json:"author_numbers"`
	PhotoURI      string  `bun:"photo_uri" json:"photo_uri,omitempty"`
}

// NewBook 创建并校验一本新的 Book。
func NewBook(isbn, title, description, genre string, authorNumbers []int64, photoURI string) (*Book, error) {
	b := &Book{
		ISBN:          isbn,
		Title:         title,
		Description:   description,
		Genre:         genre,
		AuthorNumbers: authorNumbers,
		PhotoURI:      photoURI,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate 校验 Book 的领域约束。
// 至少一位作者、必须有类别引用，ISBN 必须通过 ISBN-13 校验和。
func (b *Book) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.ISBN, validation.Required, validation.By(checkISBN13)),
		validation.Field(&b.Title, validation.Required, validation.Length(1, 128)),
		validation.Field(&b.Description, validation.Length(0, 4096)),
		validation.Field(&b.Genre, validation.Required, validation.Length(1, 100)),
		validation.Field(&b.AuthorNumbers, validation.Required, validation.Length(1, 0)),
		validation.Field(&b.PhotoURI, validation.Length(0, 1024)),
	)
}

// checkISBN13 校验 ISBN-13 格式与校验和（不含连字符的 13 位数字）。
func checkISBN13(value any) error {
	s, _ := value.(string)
	if len(s) != 13 {
		return errors.New("必须是 13 位 ISBN")
	}
	sum := 0
	for i, r := range s {
		if r < '0' || r > '9' {
			return errors.New("ISBN 只能包含数字")
		}
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	if sum%10 != 0 {
		return errors.New("ISBN-13 校验和不正确")
	}
	return nil
}
