package users

type Repo interface {
	Upsert(user *User) error
	Get(id string) (*User, error)
}
