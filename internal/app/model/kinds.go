package model

// SortField 列表排序字段，均为倒序（最新的在前）
type SortField struct {
	Column string // SQL 列名
	BSON   string // Mongo 字段名
}

// Kind 描述一种记录资源：路由名、表/集合名、创建时的必填字段和默认值
type Kind struct {
	Name       string // 路由段：/api/{Name}
	Noun       string // 提示语里的名词：Entry / Session
	Collection string
	Required   []string
	Defaults   map[string]any
	Sort       []SortField
}

var Stress = Kind{
	Name:       "stress",
	Noun:       "Entry",
	Collection: "stress_entries",
	Required:   []string{"userId", "date", "level"},
	Defaults:   map[string]any{"factors": []string{}, "journal": ""},
	Sort: []SortField{
		{Column: "date", BSON: "date"},
		{Column: "timestamp", BSON: "timestamp"},
	},
}

var Breathing = Kind{
	Name:       "breathing",
	Noun:       "Session",
	Collection: "breathing_sessions",
	Required:   []string{"userId", "exerciseId", "exerciseName", "date", "timestamp", "duration"},
	Defaults:   map[string]any{"completed": false},
	Sort: []SortField{
		{Column: "date", BSON: "date"},
		{Column: "timestamp", BSON: "timestamp"},
	},
}

var Meditation = Kind{
	Name:       "meditation",
	Noun:       "Session",
	Collection: "meditation_sessions",
	Required:   []string{"userId", "technique", "completedAt", "duration"},
	Defaults:   map[string]any{"completed": true},
	Sort: []SortField{
		{Column: "completed_at", BSON: "completedAt"},
	},
}

// Kinds 按迁移顺序排列
var Kinds = []Kind{Stress, Breathing, Meditation}
