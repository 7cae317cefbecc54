package authority

import (
	"strings"
)

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasGlobalViewRole() bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), "system:") {
			return true
		}
	}
	return false
}

func (c Permissions) HasRolePrefix(prefix string) bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

// HasSiteRole matches a site-scoped permission entry, e.g. "STLD_NDS".
func (c Permissions) HasSiteRole(role, site string) bool {
	return c.HasRole(role + "_" + site)
}

func (c Permissions) HasSiteViewPerm(site string) bool {
	return c.HasGlobalViewRole() || c.HasRoleSuffix("_"+site)
}

// VisibleSites collects the distinct sites of all site-scoped entries.
func (c Permissions) VisibleSites() []string {
	seen := map[string]bool{}
	sites := []string{}
	for _, v := range c {
		idx := strings.LastIndex(v, "_")
		if idx < 0 || idx == len(v)-1 {
			continue
		}
		site := v[idx+1:]
		if !seen[site] {
			seen[site] = true
			sites = append(sites, site)
		}
	}
	return sites
}

func (c Permissions) HasRoleSuffix(suffix string) bool {
	for _, v := range c {
		if strings.HasSuffix(strings.ToLower(v), strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}
