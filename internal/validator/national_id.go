package validator

// ValidNationalID はイランの国民番号（10桁＋mod 11 チェックディジット）を検証する。
func ValidNationalID(code string) bool {
	code = DigitsOnly(code)
	if len(code) != 10 {
		return false
	}

	// 全部同じ数字は不可
	same := true
	for i := 1; i < len(code); i++ {
		if code[i] != code[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}

	s := 0
	for i := 0; i < 9; i++ {
		s += int(code[i]-'0') * (10 - i)
	}
	check := int(code[9] - '0')
	r := s % 11
	if r < 2 {
		return check == r
	}
	return check == 11-r
}
