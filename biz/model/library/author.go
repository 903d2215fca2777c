package library

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

// Author 代表一位作者。
// AuthorNumber 是业务主键，由权威存储（PostgreSQL）在首次保存时分配；
// 0 表示尚未分配。
type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	AuthorNumber int64  `bun:"author_number,pk,autoincrement" json:"author_number"`
	Name         string `bun:"name,notnull" json:"name"`
	Bio          string `bun:"bio,notnull" json:"bio"`
	PhotoURI     string `bun:"photo_uri" json:"photo_uri,omitempty"`
}

// NewAuthor 创建并校验一个新的 Author。
// 校验失败时返回错误，调用方不应使用返回的对象。
func NewAuthor(name, bio, photoURI string) (*Author, error) {
	a := &Author{
		Name:     name,
		Bio:      bio,
		PhotoURI: photoURI,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate 校验 Author 自身的领域约束。
// 缓存反序列化路径也必须经过此校验，不允许绕过。
func (a *Author) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&a.Bio, validation.Required, validation.Length(1, 4096)),
		validation.Field(&a.PhotoURI, validation.Length(0, 1024)),
	)
}
