package utils

import (
	"strconv"
	"strings"
)

func BuildPostCacheKey(id int64) string {
	return "posts:id:v1:" + strconv.FormatInt(id, 10)
}

func BuildPostSearchCacheKey(kind, keyword string, limit, offset int) string {
	return "posts:search:v1:kind=" + strings.ToLower(strings.TrimSpace(kind)) +
		":q=" + strings.ToLower(strings.TrimSpace(keyword)) +
		":limit=" + strconv.Itoa(limit) +
		":offset=" + strconv.Itoa(offset)
}
