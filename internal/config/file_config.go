package config

// FileRules - ограничения на вложения одного вида
type FileRules struct {
	MaxCount     int
	AllowedTypes []string
}

func (r FileRules) Allows(contentType string) bool {
	for _, t := range r.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

var TaskFileRules = FileRules{
	MaxCount: 5,
	AllowedTypes: []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
	},
}

var MessageFileRules = FileRules{
	MaxCount: 5,
	AllowedTypes: []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
		"image/jpeg",
		"image/png",
		"image/webp",
	},
}

var WorkImageRules = FileRules{
	MaxCount:     10,
	AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
}

var AvatarRules = FileRules{
	MaxCount:     1,
	AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
}

// MaxWorksPerUser - сколько работ может быть в портфолио фрилансера
const MaxWorksPerUser = 20
