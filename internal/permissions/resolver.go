// Package permissions вычисляет эффективный набор разрешений сессии
// из разрешений роли и тарифного плана. Набор вычисляется один раз при
// входе и встраивается в выданный токен; изменения роли или плана
// действуют только после повторного входа.
package permissions

// RoleSuperadmin не ограничивается планом: его эффективный набор равен
// набору разрешений роли целиком.
const RoleSuperadmin = "superadmin"

// Resolve возвращает эффективный набор разрешений для пары роль/план.
//
// Для superadmin результат — разрешения роли без учета плана. Для всех
// остальных ролей — пересечение разрешений роли и плана: роль задает
// потолок, план — фильтр. Отсутствующая роль или план трактуются как
// пустой набор, а не как ошибка. Результат дедуплицирован, порядок
// значения не имеет; пустой набор — валидный результат.
func Resolve(role string, rolePerms, planPerms []string) []string {
	if role == RoleSuperadmin {
		return dedup(rolePerms)
	}

	allowed := make(map[string]struct{}, len(planPerms))
	for _, p := range planPerms {
		allowed[p] = struct{}{}
	}

	result := make([]string, 0, len(rolePerms))
	seen := make(map[string]struct{}, len(rolePerms))
	for _, p := range rolePerms {
		if _, ok := allowed[p]; !ok {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	return result
}

func dedup(perms []string) []string {
	result := make([]string, 0, len(perms))
	seen := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	return result
}
