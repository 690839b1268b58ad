package network

const (
	allocationPrefix = "net/alloc/"
	firewallPrefix   = "net/firewall/"
	networkPrefix    = "net/network/"
	subnetPrefix     = "net/subnet/"
	routePrefix      = "net/route/"
	routerPrefix     = "net/router/"
	addressPrefix    = "net/address/"
)

func allocationKey(projectID string) string { return allocationPrefix + projectID }

func firewallKey(projectID, name string) string { return firewallPrefix + projectID + "/" + name }
func firewallProjectPrefix(projectID string) string { return firewallPrefix + projectID + "/" }

func networkKey(projectID, name string) string { return networkPrefix + projectID + "/" + name }
func networkProjectPrefix(projectID string) string { return networkPrefix + projectID + "/" }

func subnetKey(projectID, region, name string) string {
	return subnetPrefix + projectID + "/" + region + "/" + name
}
func subnetProjectPrefix(projectID string) string { return subnetPrefix + projectID + "/" }

func routeKey(projectID, name string) string { return routePrefix + projectID + "/" + name }
func routeProjectPrefix(projectID string) string { return routePrefix + projectID + "/" }

func routerKey(projectID, region, name string) string {
	return routerPrefix + projectID + "/" + region + "/" + name
}
func routerProjectPrefix(projectID string) string { return routerPrefix + projectID + "/" }

func addressKey(projectID, name string) string { return addressPrefix + projectID + "/" + name }
func addressProjectPrefix(projectID string) string { return addressPrefix + projectID + "/" }
