package main

import "strconv"

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatFloat(value float64, decimals int) string {
	return strconv.FormatFloat(value, 'f', decimals, 64)
}

func formatCount(value int64) string {
	return strconv.FormatInt(value, 10)
}
