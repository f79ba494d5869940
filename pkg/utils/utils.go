package utils

import (
	"errors"
	"net"
	"strings"

	"github.com/google/uuid"
)

// GetLocalIP 返回首个可用的非回环 IPv4 地址（跨平台、排除虚拟接口）
func GetLocalIP() (string, error) {
	var fallbackIP string

	var virtualPrefixes = []string{
		"docker", "vmnet", "vboxnet", "br-", "veth", "lo", "tun", "tap",
		"zt", "ham", "npf", "wg", "tailscale", // VPN/Tunnel
		"utun", "macsec", "gpd", // macOS 特有
		"virbr", // Linux 虚拟桥接
	}
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	for _, iface := range interfaces {
		// 跳过未启用、回环或无效的接口
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		// 排除虚拟网卡
		name := strings.ToLower(iface.Name)
		skip := false
		for _, prefix := range virtualPrefixes {
			if strings.HasPrefix(name, prefix) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP == nil || ipNet.IP.IsLoopback() {
				continue
			}

			ip := ipNet.IP.To4()
			if ip == nil {
				continue // 只取 IPv4
			}

			if fallbackIP == "" {
				fallbackIP = ip.String()
			}
		}
	}

	if fallbackIP != "" {
		return fallbackIP, nil
	}

	return "", errors.New("no valid local IP found")
}

// 生成 UUID v4
func GenerateUUID() string {
	return uuid.New().String()
}

// 清理字符串（去首尾空格并转小写）
func SanitizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
