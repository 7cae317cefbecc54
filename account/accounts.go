package account

import (
	"crypto/sha256"
	"encoding/hex"

	"opexhub/authority"
	"opexhub/bizerror"
	"opexhub/idgen"
	"opexhub/persistence"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryUsersFunc            = QueryUsers
	CreateUserFunc            = CreateUser
	UpdateBasicAuthSecretFunc = UpdateBasicAuthSecret
	LoadPermFunc              = LoadPerms
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// LoadPerms builds the permission set of a user: the bare role code plus the
// site-scoped variant, e.g. ["STLD", "STLD_NDS"].
func LoadPerms(userId types.ID) authority.Permissions {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	if err := db.Model(&User{}).Where(&User{ID: userId}).Scan(&user).Error; err != nil {
		return authority.Permissions{}
	}
	perms := authority.Permissions{}
	if user.Role != "" {
		perms = append(perms, user.Role)
		if user.Site != "" {
			perms = append(perms, user.Role+"_"+user.Site)
		}
	}
	return perms
}

func QueryUsers(s *session.Session) (*[]UserInfo, error) {
	var users []UserInfo
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.HasRole(SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname, Email: c.Email,
		Role: c.Role, Site: c.Site, Secret: HashSha256(c.Secret)}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Save(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Email: user.Email,
		Role: user.Role, Site: user.Site}, nil
}

func UpdateUser(userId types.ID, c *UserUpdation, s *session.Session) error {
	if !s.Perms.HasRole(SystemAdminPermission.ID) && userId != s.Identity.ID {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		user := User{ID: userId}
		if err := tx.Where(&user).First(&user).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Update(&User{Nickname: c.Nickname}).Error; err != nil {
			return err
		}
		return nil
	})
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, s *session.Session) error {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).Scan(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	if err := db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Update(&User{Secret: HashSha256(u.NewSecret)}).Error; err != nil {
		return err
	}

	return nil
}

// FindUserByID resolves a user for assignee routing; NotFound is reported with
// the shared sentinel so callers surface a 404 taxonomy error.
func FindUserByID(userId types.ID, db *gorm.DB) (*User, error) {
	user := User{}
	if err := db.Where(&User{ID: userId}).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
