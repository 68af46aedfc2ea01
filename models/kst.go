// models/kst.go
package models

import "time"

// KSTLayout is the timestamp format used by the blog demo.
const KSTLayout = "2006-01-02 15:04:05"

var kst = time.FixedZone("KST", 9*60*60)

// FormatKST renders t in Korea Standard Time (UTC+9).
func FormatKST(t time.Time) string {
	return t.In(kst).Format(KSTLayout)
}

// NowKST is FormatKST(time.Now()).
func NowKST() string {
	return FormatKST(time.Now())
}
