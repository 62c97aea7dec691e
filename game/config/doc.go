// Package config provides the Pong map catalog.
//
// The config package handles:
//   - The built-in classic maps ("one", "two", "three")
//   - Loading extra or overriding map definitions from JSON files
//   - Validation of map tuning parameters
//   - Saving custom maps submitted through the API
//
// Map Format:
//
// Map definitions are JSON documents describing the gameplay tuning both
// clients must agree on before a match starts:
//
//	{
//	  "name": "two",
//	  "description": "Faster ball with power-ups",
//	  "ball_speed": 1.4,
//	  "paddle_scale": 1.0,
//	  "win_score": 10,
//	  "power_ups": true,
//	  "power_up_kinds": ["speed_ball", "grow_paddle"],
//	  "theme": "neon"
//	}
//
// Usage:
//
//	manager, err := config.NewManager("maps")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := manager.LoadMap("two")
//	maps, err := manager.ListMaps()
//
// Validation:
//
// Definitions are validated on load and save: positive ball speed and win
// score, paddle scale within (0, 2], and only known power-up kinds.
package config
