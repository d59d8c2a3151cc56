package repository_test

import "time"

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
