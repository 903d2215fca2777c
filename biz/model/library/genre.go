package library

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

// Genre 代表一个图书类别。
// Name 既是业务主键也是唯一字段，整个类型小而稳定，
// 因此它是唯一允许缓存"全量列表"的实体（见 redisrepo 的成员集合）。
type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	Name string `bun:"name,pk" json:"name"`
}

// NewGenre 创建并校验一个新的 Genre。
func NewGenre(name string) (*Genre, error) {
	g := &Genre{Name: name}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate 校验 Genre 的领域约束。
func (g *Genre) Validate() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.Name, validation.Required, validation.Length(1, 100)),
	)
}
