package model

// All 需要自动建表的模型，按依赖顺序排列
func All() []any {
	return []any{
		&User{},
		&Group{},
		&Post{},
		&Comment{},
		&Follow{},
		&PostLike{},
		&SocialOutbox{},
	}
}
