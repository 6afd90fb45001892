package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// 随机角色不包含管理员，管理员只通过初始管理员或手动修改产生
var roles = []domain.Role{
	domain.RoleChef,
	domain.RoleCashier,
	domain.RoleCleaner,
	domain.RoleTraineeChef,
	domain.RoleDriver,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var allShiftTypes = []domain.ShiftType{
	domain.ShiftMorning,
	domain.ShiftAfternoon,
	domain.ShiftNight,
	domain.ShiftFullDay,
}

// 用 Fisher-Yates 洗牌算法来生成随机的开设班次集合
func GenerateRandomOperatingShifts() []domain.ShiftType {
	shifts := make([]domain.ShiftType, len(allShiftTypes))
	copy(shifts, allShiftTypes)

	for i := len(shifts) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shifts[i], shifts[j] = shifts[j], shifts[i]
	}

	n := rand.Intn(len(shifts)) + 1

	return shifts[:n]
}

func GenerateRandomSite() *domain.Site {
	kind := domain.SiteKindKitchen
	if rand.Intn(2) == 0 {
		kind = domain.SiteKindShop
	}

	name := "门店" + GenerateRandomID(0, 3)
	if kind == domain.SiteKindKitchen {
		name = "厨房" + GenerateRandomID(0, 3)
	}

	return &domain.Site{
		Kind:            kind,
		Name:            name,
		Address:         "测试地址" + GenerateRandomID(0, 6),
		OperatingShifts: GenerateRandomOperatingShifts(),
	}
}

// 生成一笔随机的薪资记录，金额单位为分
func GenerateRandomSalaryAmount() int64 {
	return int64(rand.Intn(300000) + 300000) // 3000 ~ 6000 元
}
