package bot

// Admins は ADMIN_IDS から作る許可リスト。
type Admins map[int64]struct{}

func NewAdmins(ids []int64) Admins {
	a := make(Admins, len(ids))
	for _, id := range ids {
		a[id] = struct{}{}
	}
	return a
}

func (a Admins) IsAdmin(userID int64) bool {
	_, ok := a[userID]
	return ok
}
